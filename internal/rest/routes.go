package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"counseling-booking-api/internal/handler"
)

func (a *api) health(c *gin.Context) {
	resp, err := a.h.Health(c.Request.Context(), &handler.Empty{})
	respond(c, resp, err)
}

func (a *api) register(c *gin.Context) {
	var req handler.RegisterRequest
	if !bind(c, &req) {
		return
	}
	resp, err := a.h.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *api) login(c *gin.Context) {
	var req handler.LoginRequest
	if !bind(c, &req) {
		return
	}
	resp, err := a.h.Login(c.Request.Context(), &req)
	respond(c, resp, err)
}

func (a *api) createUser(c *gin.Context) {
	var req handler.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	resp, err := a.h.CreateUser(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *api) setUserActive(c *gin.Context) {
	var req handler.SetUserActiveRequest
	if !bind(c, &req) {
		return
	}
	req.ID = c.Param("id")
	resp, err := a.h.SetUserActive(c.Request.Context(), &req)
	respond(c, resp, err)
}

func (a *api) book(c *gin.Context) {
	var req handler.BookAppointmentRequest
	if !bind(c, &req) {
		return
	}
	resp, err := a.h.BookAppointment(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *api) listAppointments(c *gin.Context) {
	resp, err := a.h.ListAppointments(c.Request.Context(), &handler.Empty{})
	respond(c, resp, err)
}

func (a *api) getAppointment(c *gin.Context) {
	resp, err := a.h.GetAppointment(c.Request.Context(), &handler.GetAppointmentRequest{ID: c.Param("id")})
	respond(c, resp, err)
}

func (a *api) updateStatus(c *gin.Context) {
	var req handler.UpdateStatusRequest
	if !bind(c, &req) {
		return
	}
	req.ID = c.Param("id")
	resp, err := a.h.UpdateAppointmentStatus(c.Request.Context(), &req)
	respond(c, resp, err)
}

func (a *api) listServices(c *gin.Context) {
	resp, err := a.h.ListServices(c.Request.Context(), &handler.Empty{})
	respond(c, resp, err)
}

func (a *api) getService(c *gin.Context) {
	resp, err := a.h.GetService(c.Request.Context(), &handler.GetServiceRequest{ID: c.Param("id")})
	respond(c, resp, err)
}

func (a *api) availability(c *gin.Context) {
	resp, err := a.h.GetAvailability(c.Request.Context(), &handler.AvailabilityRequest{Date: c.Param("date")})
	respond(c, resp, err)
}

func (a *api) contact(c *gin.Context) {
	var req handler.ContactRequest
	if !bind(c, &req) {
		return
	}
	resp, err := a.h.SubmitContact(c.Request.Context(), &req)
	respond(c, resp, err)
}
