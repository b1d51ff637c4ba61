package handler

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/validation"
)

const errorDomain = "counseling.v1"

var kindCodes = map[booking.Kind]codes.Code{
	booking.KindValidation: codes.InvalidArgument,
	booking.KindPermission: codes.PermissionDenied,
	booking.KindNotFound:   codes.NotFound,
	booking.KindConflict:   codes.Aborted,
	booking.KindRejected:   codes.FailedPrecondition,
	booking.KindDependency: codes.Unavailable,
}

// toStatus converts a service error into a gRPC status. The failure code and
// field ride along as an ErrorInfo detail.
func (h *Handler) toStatus(err error) error {
	if err == nil {
		return nil
	}

	var be *booking.Error
	if errors.As(err, &be) {
		msg := be.Message
		if be.Kind == booking.KindDependency {
			h.log.Error().Err(err).Msg("dependency failure")
			msg = "service temporarily unavailable"
		}
		if msg == "" {
			msg = string(be.Code)
		}
		return withInfo(kindCodes[be.Kind], msg, string(be.Code), be.Field)
	}

	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return withInfo(codes.InvalidArgument, fe.Error(), string(booking.CodeInvalidField), fe.Field)
	}

	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, account.ErrEmailTaken):
		return withInfo(codes.AlreadyExists, "user already exists with this email", "EmailTaken", "email")
	case errors.Is(err, account.ErrUserNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, account.ErrStaffRole):
		return withInfo(codes.InvalidArgument, err.Error(), string(booking.CodeInvalidField), "role")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}

	h.log.Error().Err(err).Msg("unhandled error")
	return status.Error(codes.Internal, "internal error")
}

func withInfo(c codes.Code, msg, reason, field string) error {
	st := status.New(c, msg)
	info := &errdetails.ErrorInfo{Reason: reason, Domain: errorDomain}
	if field != "" {
		info.Metadata = map[string]string{"field": field}
	}
	if ds, err := st.WithDetails(info); err == nil {
		st = ds
	}
	return st.Err()
}

// ErrorInfo extracts the failure code and field carried by err, if any.
func ErrorInfo(err error) (code, field string) {
	st, ok := status.FromError(err)
	if !ok {
		return "", ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason(), info.GetMetadata()["field"]
		}
	}
	return "", ""
}
