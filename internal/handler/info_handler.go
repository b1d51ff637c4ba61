package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (h *Handler) ListServices(_ context.Context, _ *Empty) (*ServiceListResponse, error) {
	return &ServiceListResponse{Success: true, Services: h.catalog.List()}, nil
}

func (h *Handler) GetService(_ context.Context, req *GetServiceRequest) (*ServiceResponse, error) {
	svc, ok := h.catalog.Get(req.ID)
	if !ok {
		return nil, status.Error(codes.NotFound, "service not found")
	}
	return &ServiceResponse{Success: true, Service: &svc}, nil
}

func (h *Handler) SubmitContact(ctx context.Context, req *ContactRequest) (*MessageResponse, error) {
	if _, err := h.contact.Submit(ctx, *req); err != nil {
		return nil, h.toStatus(err)
	}
	return &MessageResponse{
		Success: true,
		Message: "Thank you for your message! We will respond within 24 hours.",
	}, nil
}

func (h *Handler) Health(ctx context.Context, _ *Empty) (*HealthResponse, error) {
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check: store unreachable")
			return nil, status.Error(codes.Unavailable, "store unreachable")
		}
	}
	return &HealthResponse{
		Status:    "healthy",
		Message:   "SHRM Counseling API is running",
		Timestamp: h.now().UTC(),
	}, nil
}
