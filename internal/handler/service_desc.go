package handler

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "counseling.v1.BookingService"

// Method returns the full gRPC method name of op.
func Method(op string) string { return "/" + ServiceName + "/" + op }

type BookingServiceServer interface {
	Register(context.Context, *RegisterRequest) (*SessionResponse, error)
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*UserResponse, error)
	SetUserActive(context.Context, *SetUserActiveRequest) (*UserResponse, error)
	BookAppointment(context.Context, *BookAppointmentRequest) (*AppointmentResponse, error)
	ListAppointments(context.Context, *Empty) (*AppointmentListResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointmentStatus(context.Context, *UpdateStatusRequest) (*AppointmentResponse, error)
	GetAvailability(context.Context, *AvailabilityRequest) (*AvailabilityResponse, error)
	ListServices(context.Context, *Empty) (*ServiceListResponse, error)
	GetService(context.Context, *GetServiceRequest) (*ServiceResponse, error)
	SubmitContact(context.Context, *ContactRequest) (*MessageResponse, error)
	Health(context.Context, *Empty) (*HealthResponse, error)
}

var _ BookingServiceServer = (*Handler)(nil)

func unary[Req, Resp any](name string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := Method(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, icpt grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(*Req))
			}
			if icpt == nil {
				return h(ctx, in)
			}
			return icpt(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: full}, h)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", BookingServiceServer.Register),
		unary("Login", BookingServiceServer.Login),
		unary("CreateUser", BookingServiceServer.CreateUser),
		unary("SetUserActive", BookingServiceServer.SetUserActive),
		unary("BookAppointment", BookingServiceServer.BookAppointment),
		unary("ListAppointments", BookingServiceServer.ListAppointments),
		unary("GetAppointment", BookingServiceServer.GetAppointment),
		unary("UpdateAppointmentStatus", BookingServiceServer.UpdateAppointmentStatus),
		unary("GetAvailability", BookingServiceServer.GetAvailability),
		unary("ListServices", BookingServiceServer.ListServices),
		unary("GetService", BookingServiceServer.GetService),
		unary("SubmitContact", BookingServiceServer.SubmitContact),
		unary("Health", BookingServiceServer.Health),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterBookingService(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
