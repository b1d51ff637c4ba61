package handler

import (
	"context"

	"google.golang.org/grpc/codes"
)

func (h *Handler) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	s, err := h.accounts.Register(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &SessionResponse{Success: true, Token: s.Token, User: s.User}, nil
}

func (h *Handler) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	s, err := h.accounts.Login(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &SessionResponse{Success: true, Token: s.Token, User: s.User}, nil
}

// CreateUser adds a counselor or admin. Admin role is enforced by the auth
// layer on both transports.
func (h *Handler) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	u, err := h.accounts.CreateStaff(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &UserResponse{Success: true, Message: "User created successfully", User: u}, nil
}

func (h *Handler) SetUserActive(ctx context.Context, req *SetUserActiveRequest) (*UserResponse, error) {
	if req.ID == "" {
		return nil, withInfo(codes.InvalidArgument, "id is required", "InvalidField", "id")
	}
	if req.Active == nil {
		return nil, withInfo(codes.InvalidArgument, "isActive is required", "InvalidField", "isActive")
	}
	u, err := h.accounts.SetActive(ctx, req.ID, *req.Active)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &UserResponse{Success: true, User: u}, nil
}
