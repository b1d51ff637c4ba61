// Package account handles registration, login and staff management.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"counseling-booking-api/internal/auth"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/model"
	"counseling-booking-api/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrStaffRole          = errors.New("role must be counselor or admin")
)

type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	SetUserActive(ctx context.Context, id string, active bool) (*model.User, error)
}

type Service struct {
	store    Store
	hasher   booking.Hasher
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

func New(st Store, h booking.Hasher, secret string, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{store: st, hasher: h, secret: secret, tokenTTL: ttl, log: log}
}

type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Phone     string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type StaffInput struct {
	RegisterInput
	Role            string   `json:"role" validate:"required,oneof=counselor admin"`
	Specializations []string `json:"specializations" validate:"omitempty,dive,oneof=individual-counseling couples-counseling family-counseling group-therapy crisis-intervention addiction-counseling grief-counseling youth-counseling"`
}

// Session is an issued access token.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a client account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if fe := validation.Struct(in); fe != nil {
		return nil, fe
	}
	u, err := s.create(ctx, in, model.RoleClient, nil)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// CreateStaff adds a counselor or admin account.
func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*model.User, error) {
	if fe := validation.Struct(in); fe != nil {
		return nil, fe
	}
	role, err := model.ParseRole(in.Role)
	if err != nil || role == model.RoleClient {
		return nil, ErrStaffRole
	}
	return s.create(ctx, in.RegisterInput, role, in.Specializations)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role model.Role, specs []string) (*model.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           model.NormalizeEmail(in.Email),
		PasswordHash:    hash,
		Phone:           in.Phone,
		Role:            role,
		Active:          true,
		Specializations: specs,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("role", string(role)).Msg("user created")
	return u, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials. Unknown, wrong and deactivated accounts all
// fail the same way.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if fe := validation.Struct(in); fe != nil {
		return nil, fe
	}
	u, err := s.store.UserByEmail(ctx, in.Email)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	u, err := s.store.SetUserActive(ctx, id, active)
	if errors.Is(err, model.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Bool("active", active).Msg("user activation changed")
	return u, nil
}

func (s *Service) issue(u *model.User) (*Session, error) {
	tok, err := auth.MakeToken(u.ID, u.Role, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}
