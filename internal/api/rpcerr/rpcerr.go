// Package rpcerr maps domain error kinds onto gRPC status codes. The HTTP
// API derives its status codes from the same table through the gateway's
// code mapping, so both transports report a failure the same way.
package rpcerr

import (
	"time"

	"github.com/Domenick1991/slotbooking/internal/domain"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"
)

// ErrorDomain tags ErrorInfo details.
const ErrorDomain = "slotbooking"

// RetryDelay is the back-off suggested for transient failures.
const RetryDelay = time.Second

func Code(kind domain.Kind) codes.Code {
	switch kind {
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindAuthorization:
		return codes.PermissionDenied
	case domain.KindNotFound:
		return codes.NotFound
	case domain.KindConflict:
		return codes.AlreadyExists
	case domain.KindTransient:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func HTTPStatus(kind domain.Kind) int {
	return runtime.HTTPStatusFromCode(Code(kind))
}

// Status converts err into a gRPC status carrying the kind as ErrorInfo and,
// for transient failures, a RetryInfo. Internal errors keep their message
// out of the status.
func Status(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if _, ok := status.FromError(err); ok {
		return status.Convert(err)
	}

	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == domain.KindInternal {
		msg = "internal error"
	}
	st := status.New(Code(kind), msg)

	details := []protoadapt.MessageV1{&errdetails.ErrorInfo{Reason: kind.String(), Domain: ErrorDomain}}
	if kind == domain.KindTransient {
		details = append(details, &errdetails.RetryInfo{RetryDelay: durationpb.New(RetryDelay)})
	}
	withDetails, dErr := st.WithDetails(details...)
	if dErr != nil {
		return st
	}
	return withDetails
}

// Reason returns the kind recorded in st's ErrorInfo, or "".
func Reason(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
