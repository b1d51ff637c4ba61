package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counseling-booking-api/internal/account"
	"counseling-booking-api/internal/auth"
	"counseling-booking-api/internal/booking"
	"counseling-booking-api/internal/catalog"
	"counseling-booking-api/internal/contact"
	"counseling-booking-api/internal/handler"
	"counseling-booking-api/internal/middleware"
	"counseling-booking-api/internal/model"
	"counseling-booking-api/internal/rest"
	"counseling-booking-api/internal/store/memstore"
)

const secret = "rest-test-secret-012345"

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	router    http.Handler
	counselor *model.User
	admin     *model.User
}

func newEnv(t *testing.T, limiter *middleware.RateLimiter) *env {
	t.Helper()
	st := memstore.New()
	hasher := auth.NewBcrypt(4)
	cat := catalog.Default()
	accounts := account.New(st, hasher, secret, time.Hour, zerolog.Nop())
	h := handler.New(handler.Deps{
		Booking:  booking.NewService(booking.Deps{Store: st, Hasher: hasher, Pricer: cat, Logger: zerolog.Nop()}),
		Accounts: accounts,
		Catalog:  cat,
		Contact:  contact.New(nil, zerolog.Nop()),
		Logger:   zerolog.Nop(),
	})

	e := &env{router: rest.NewRouter(h, rest.Config{
		Secret:      secret,
		CORSOrigins: []string{"http://localhost:3000"},
		Limiter:     limiter,
		Logger:      zerolog.Nop(),
	})}

	staff := func(email string, role string) *model.User {
		u, err := accounts.CreateStaff(context.Background(), account.StaffInput{
			RegisterInput: account.RegisterInput{FirstName: "Staff", LastName: "Member",
				Email: email, Password: "staff-password"},
			Role: role,
		})
		require.NoError(t, err)
		return u
	}
	e.counselor = staff("counselor@shrm.org", "counselor")
	e.admin = staff("admin@shrm.org", "admin")
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if s, ok := body.(string); ok {
		rd = bytes.NewReader([]byte(s))
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	w, out := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return out["token"].(string)
}

func bookingBody() map[string]any {
	return map[string]any{
		"firstName":     "Jane",
		"lastName":      "Doe",
		"email":         "jane@example.com",
		"phone":         "5551234567",
		"serviceType":   "individual-counseling",
		"preferredDate": "2025-03-10",
		"preferredTime": "09:00",
		"sessionType":   "in-person",
		"message":       "first visit",
	}
}

func TestBookAndManage(t *testing.T) {
	e := newEnv(t, nil)

	w, out := e.do(t, http.MethodPost, "/api/appointments", "", bookingBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, out["success"])
	appt := out["appointment"].(map[string]any)
	assert.Equal(t, "10:00", appt["endTime"])
	assert.Equal(t, float64(60), appt["duration"])
	assert.Equal(t, "scheduled", appt["status"])
	assert.Equal(t, e.counselor.ID, appt["counselorId"])
	id := appt["id"].(string)

	w, _ = e.do(t, http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := e.login(t, "counselor@shrm.org", "staff-password")
	w, out = e.do(t, http.MethodGet, "/api/appointments", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), out["count"])

	w, out = e.do(t, http.MethodPut, "/api/appointments/"+id+"/status", tok,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", out["appointment"].(map[string]any)["status"])

	w, out = e.do(t, http.MethodPut, "/api/appointments/"+id+"/status", tok,
		map[string]string{"status": "scheduled"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, out["success"])
	errs := out["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "IllegalTransition", errs[0].(map[string]any)["code"])
	assert.Equal(t, "status", errs[0].(map[string]any)["field"])

	w, out = e.do(t, http.MethodGet, "/api/appointments/"+id, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, out["appointment"].(map[string]any)["id"])
}

func TestClientPermissions(t *testing.T) {
	e := newEnv(t, nil)
	w, out := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "Sam", "lastName": "Client", "email": "sam@example.com", "password": "sam-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tok := out["token"].(string)

	body := bookingBody()
	delete(body, "email")
	w, out = e.do(t, http.MethodPost, "/api/appointments", tok, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := out["appointment"].(map[string]any)["id"].(string)

	w, _ = e.do(t, http.MethodPut, "/api/appointments/"+id+"/status", tok, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out = e.do(t, http.MethodPut, "/api/appointments/"+id+"/status", tok,
		map[string]string{"status": "cancelled", "cancelReason": "schedule conflict"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "schedule conflict", out["appointment"].(map[string]any)["cancelReason"])

	w, _ = e.do(t, http.MethodPost, "/api/users", tok, map[string]string{})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidationEnvelope(t *testing.T) {
	e := newEnv(t, nil)

	body := bookingBody()
	body["endTime"] = "09:15"
	w, out := e.do(t, http.MethodPost, "/api/appointments", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := out["errors"].([]any)
	assert.Equal(t, "InvalidDuration", errs[0].(map[string]any)["code"])

	w, out = e.do(t, http.MethodPost, "/api/appointments", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", out["message"])

	w, _ = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.org", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNoCounselorAvailable(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.login(t, "admin@shrm.org", "staff-password")

	w, out := e.do(t, http.MethodPut, "/api/users/"+e.counselor.ID+"/active", tok, map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, out["user"].(map[string]any)["isActive"])

	w, out = e.do(t, http.MethodPost, "/api/appointments", "", bookingBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NoCounselorAvailable", out["errors"].([]any)[0].(map[string]any)["code"])
}

func TestAdminCreatesCounselor(t *testing.T) {
	e := newEnv(t, nil)
	tok := e.login(t, "admin@shrm.org", "staff-password")

	w, out := e.do(t, http.MethodPost, "/api/users", tok, map[string]any{
		"firstName": "Carl", "lastName": "Rogers", "email": "carl@shrm.org",
		"password": "carl-password", "role": "counselor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "counselor", out["user"].(map[string]any)["role"])
	_, hasHash := out["user"].(map[string]any)["passwordHash"]
	assert.False(t, hasHash)

	w, _ = e.do(t, http.MethodPost, "/api/users", tok, map[string]any{
		"firstName": "Carl", "lastName": "Rogers", "email": "carl@shrm.org",
		"password": "carl-password", "role": "counselor",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	e := newEnv(t, nil)

	w, out := e.do(t, http.MethodGet, "/api/services", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["services"], 8)

	w, _ = e.do(t, http.MethodGet, "/api/services/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = e.do(t, http.MethodGet, "/api/availability/2025-03-10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["availableSlots"], len(booking.DaySlots))

	w, _ = e.do(t, http.MethodGet, "/api/availability/tomorrow", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = e.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "subject": "crisis", "message": "I need to talk to someone",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(out["message"].(string), "Thank you"))

	w, out = e.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", out["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w, _ = e.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitedRoutes(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1)
	defer rl.Stop()
	e := newEnv(t, rl)

	creds := map[string]string{"email": "admin@shrm.org", "password": "staff-password"}
	w, _ := e.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusOK, w.Code)
	w, out := e.do(t, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, out["success"])

	// reads are not limited
	w, _ = e.do(t, http.MethodGet, "/api/services", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
