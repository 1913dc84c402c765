// Package handler exposes the chat API over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"provision_chat_backend/internal/chat/service"
	"provision_chat_backend/internal/chat/transport"
	"provision_chat_backend/platform/httpkit"
	"provision_chat_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgInvalidSessionID = "invalid session ID"
)

// Handler handles HTTP requests for the chat module.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ProcessMessage runs one chat turn.
// POST /api/v1/chat
func (h *Handler) ProcessMessage(c *gin.Context) {
	var req transport.ProcessMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.ProcessMessage(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// History returns a session's transcript and qualification status.
// GET /api/v1/chat/:session_id/history
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return
	}

	result, err := h.svc.History(c.Request.Context(), sessionID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// BookAppointment books a consultation for a session.
// POST /api/v1/appointments
func (h *Handler) BookAppointment(c *gin.Context) {
	var req transport.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.BookAppointment(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Availability lists open consultation slots.
// GET /api/v1/appointments/availability
func (h *Handler) Availability(c *gin.Context) {
	result, err := h.svc.Availability(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
