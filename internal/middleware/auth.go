package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"counseling-booking-api/internal/auth"
	"counseling-booking-api/internal/model"
)

const servicePrefix = "/counseling.v1.BookingService/"

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   model.Role
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// skip auth for these; a valid token is still picked up when sent
var open = map[string]bool{
	servicePrefix + "Register":        true,
	servicePrefix + "Login":           true,
	servicePrefix + "BookAppointment": true,
	servicePrefix + "ListServices":    true,
	servicePrefix + "GetService":      true,
	servicePrefix + "GetAvailability": true,
	servicePrefix + "SubmitContact":   true,
	servicePrefix + "Health":          true,
}

var adminOnly = map[string]bool{
	servicePrefix + "CreateUser":    true,
	servicePrefix + "SetUserActive": true,
}

func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}

		if header == "" {
			if open[info.FullMethod] {
				return next(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "no token")
		}
		// a header that is sent must be usable, even on open methods
		raw := bearer(header)
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "authorization header format must be Bearer {token}")
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		if adminOnly[info.FullMethod] && claims.Role != model.RoleAdmin {
			return nil, status.Error(codes.PermissionDenied, "admin access required")
		}

		ctx = WithPrincipal(ctx, Principal{UserID: claims.UserID, Role: claims.Role})
		return next(ctx, req)
	}
}

// bearer extracts the token from an Authorization value.
func bearer(h string) string {
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": msg})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// principal in the request context.
func RequireAuth(secret string) gin.HandlerFunc {
	return authenticate(secret, true)
}

// OptionalAuth attaches a principal when a token is sent. A token that is
// sent but invalid is still rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return authenticate(secret, false)
}

func authenticate(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				abort(c, http.StatusUnauthorized, "no token, authorization denied")
				return
			}
			c.Next()
			return
		}
		raw := bearer(header)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
			return
		}
		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "token is not valid")
			return
		}
		p := Principal{UserID: claims.UserID, Role: claims.Role}
		c.Set("principal", p)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c.Request.Context())
		if !ok {
			abort(c, http.StatusUnauthorized, "no token, authorization denied")
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "insufficient permissions")
	}
}
