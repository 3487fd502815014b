package slotbooking_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName matches api/proto/slotbooking/v1/slotbooking.proto.
const ServiceName = "slotbooking.v1.SlotBookingService"

// MemberMetadataKey carries the caller's member id, like the X-Member-ID
// header of the HTTP API.
const MemberMetadataKey = "x-member-id"

// SlotBookingServer is the service contract. Requests and responses are
// JSON-shaped structs whose fields mirror the HTTP API bodies.
type SlotBookingServer interface {
	CreateTimeSlot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListMyTimeSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListHostTimeSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListGuestBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListHostBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListPublicHostBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RescheduleBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateBookingStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod is the gRPC method path of name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func RegisterSlotBookingServer(s grpc.ServiceRegistrar, srv SlotBookingServer) {
	s.RegisterService(&serviceDesc, srv)
}

type call func(srv SlotBookingServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SlotBookingServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreateTimeSlot", SlotBookingServer.CreateTimeSlot),
		method("ListMyTimeSlots", SlotBookingServer.ListMyTimeSlots),
		method("ListHostTimeSlots", SlotBookingServer.ListHostTimeSlots),
		method("CreateBooking", SlotBookingServer.CreateBooking),
		method("GetBooking", SlotBookingServer.GetBooking),
		method("ListGuestBookings", SlotBookingServer.ListGuestBookings),
		method("ListHostBookings", SlotBookingServer.ListHostBookings),
		method("ListPublicHostBookings", SlotBookingServer.ListPublicHostBookings),
		method("UpdateBooking", SlotBookingServer.UpdateBooking),
		method("RescheduleBooking", SlotBookingServer.RescheduleBooking),
		method("UpdateBookingStatus", SlotBookingServer.UpdateBookingStatus),
		method("CancelBooking", SlotBookingServer.CancelBooking),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slotbooking/v1/slotbooking.proto",
}

func method(name string, fn call) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(SlotBookingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(srv.(SlotBookingServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}
