// Package rest exposes the booking service over HTTP/JSON with gin.
package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"counseling-booking-api/internal/handler"
	"counseling-booking-api/internal/middleware"
	"counseling-booking-api/internal/model"
)

type Config struct {
	Secret      string
	CORSOrigins []string
	Limiter     *middleware.RateLimiter
	Logger      zerolog.Logger
}

type api struct {
	h *handler.Handler
}

func NewRouter(h *handler.Handler, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.CORS(cfg.CORSOrigins),
	)

	a := &api{h: h}
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		limit = middleware.RateLimitHTTP(cfg.Limiter)
	}
	requireAuth := middleware.RequireAuth(cfg.Secret)

	r.GET("/", a.health)

	g := r.Group("/api")
	g.GET("/health", a.health)

	authG := g.Group("/auth", limit)
	authG.POST("/register", a.register)
	authG.POST("/login", a.login)

	appts := g.Group("/appointments")
	appts.POST("", limit, middleware.OptionalAuth(cfg.Secret), a.book)
	appts.GET("", requireAuth, a.listAppointments)
	appts.GET("/:id", requireAuth, a.getAppointment)
	appts.PUT("/:id/status", requireAuth, a.updateStatus)

	g.GET("/services", a.listServices)
	g.GET("/services/:id", a.getService)
	g.GET("/availability/:date", a.availability)
	g.POST("/contact", limit, a.contact)

	users := g.Group("/users", requireAuth, middleware.RequireRole(model.RoleAdmin))
	users.POST("", a.createUser)
	users.PUT("/:id/active", a.setUserActive)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})
	return r
}

var httpCodes = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.Aborted:            http.StatusConflict,
	codes.AlreadyExists:      http.StatusConflict,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Unavailable:        http.StatusBadGateway,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
	codes.Canceled:           http.StatusRequestTimeout,
}

func httpStatus(c codes.Code) int {
	if s, ok := httpCodes[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type fieldError struct {
	Field string `json:"field,omitempty"`
	Code  string `json:"code"`
}

type errorBody struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func fail(c *gin.Context, err error) {
	st := status.Convert(err)
	body := errorBody{Message: st.Message()}
	if st.Code() == codes.Unknown || st.Code() == codes.Internal {
		body.Message = "internal error"
	}
	if code, field := handler.ErrorInfo(err); code != "" {
		body.Errors = []fieldError{{Field: field, Code: code}}
	}
	c.JSON(httpStatus(st.Code()), body)
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, errorBody{
		Message: "invalid request body",
		Errors:  []fieldError{{Code: "InvalidBody"}},
	})
}

// bind decodes the JSON body into v and writes a 400 when it is malformed.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badBody(c)
		return false
	}
	return true
}

func respond[T any](c *gin.Context, resp T, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
