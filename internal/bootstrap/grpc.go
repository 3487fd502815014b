package bootstrap

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/slotbooking/api"
	rpcapi "github.com/Domenick1991/slotbooking/internal/api/slotbooking_service_api"
	"github.com/Domenick1991/slotbooking/internal/service/booking"
	"github.com/Domenick1991/slotbooking/internal/service/timeslots"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GatewayPath carries the gRPC method name as its last segment.
const GatewayPath = "/rpc/v1/{method}"

func NewGRPCServer(log *zap.Logger, slotSvc timeslots.TimeSlotUseCase, bookingSvc booking.BookingUseCase) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(log), rpcapi.ErrorInterceptor))
	rpcapi.RegisterSlotBookingServer(srv, rpcapi.NewServer(slotSvc, bookingSvc))
	return srv
}

// NewGateway forwards JSON POSTs on GatewayPath to conn. The member header
// travels as gRPC metadata.
func NewGateway(conn grpc.ClientConnInterface) (*runtime.ServeMux, error) {
	mux := runtime.NewServeMux(runtime.WithIncomingHeaderMatcher(func(key string) (string, bool) {
		if strings.EqualFold(key, api.MemberHeader) {
			return rpcapi.MemberMetadataKey, true
		}
		return runtime.DefaultHeaderMatcher(key)
	}))
	marshaler := &runtime.JSONPb{}

	err := mux.HandlePath(http.MethodPost, GatewayPath, func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		method := rpcapi.FullMethod(params["method"])
		ctx, err := runtime.AnnotateContext(r.Context(), mux, r, method)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, marshaler, w, r, err)
			return
		}

		in := &structpb.Struct{}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.InvalidArgument, err.Error()))
			return
		}
		if len(body) > 0 {
			if err := marshaler.Unmarshal(body, in); err != nil {
				runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.InvalidArgument, "request body must be a JSON object"))
				return
			}
		}

		out := &structpb.Struct{}
		var md runtime.ServerMetadata
		err = conn.Invoke(ctx, method, in, out, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
		ctx = runtime.NewServerMetadataContext(ctx, md)
		if err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, err)
			return
		}
		runtime.ForwardResponseMessage(ctx, mux, marshaler, w, r, out)
	})
	if err != nil {
		return nil, err
	}
	return mux, nil
}

func unaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	log = log.Named("grpc")
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		switch code {
		case codes.Internal, codes.Unavailable, codes.Unknown:
			log.Warn("call", fields...)
		default:
			log.Debug("call", fields...)
		}
		return resp, err
	}
}
