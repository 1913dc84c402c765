// Package handler exposes the seminars API over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"provision_chat_backend/internal/seminars/service"
	"provision_chat_backend/internal/seminars/transport"
	"provision_chat_backend/platform/httpkit"
	"provision_chat_backend/platform/validator"
)

const (
	msgInvalidRequest        = "invalid request"
	msgInvalidSeminarID      = "invalid seminar ID"
	msgInvalidRegistrationID = "invalid registration ID"
)

// Handler handles HTTP requests for the seminars module.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new seminars handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListUpcoming lists future seminars.
// GET /api/v1/seminars
func (h *Handler) ListUpcoming(c *gin.Context) {
	var req transport.ListSeminarsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.ListUpcoming(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get retrieves one seminar.
// GET /api/v1/seminars/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.seminarID(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Register records an RSVP for a seminar.
// POST /api/v1/seminars/:id/register
func (h *Handler) Register(c *gin.Context) {
	id, ok := h.seminarID(c)
	if !ok {
		return
	}

	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.Register(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Create schedules a seminar (admin).
// POST /api/v1/admin/seminars
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateSeminarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Registrations lists RSVPs for a seminar (admin).
// GET /api/v1/admin/seminars/:id/registrations
func (h *Handler) Registrations(c *gin.Context) {
	id, ok := h.seminarID(c)
	if !ok {
		return
	}

	result, err := h.svc.Registrations(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"registrations": result, "count": len(result)})
}

// CheckIn marks an attendee as present (admin).
// POST /api/v1/admin/seminars/registrations/:id/check-in
func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := h.registrationID(c)
	if !ok {
		return
	}

	result, err := h.svc.CheckIn(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// NoShow marks an attendee as absent (admin).
// POST /api/v1/admin/seminars/registrations/:id/no-show
func (h *Handler) NoShow(c *gin.Context) {
	id, ok := h.registrationID(c)
	if !ok {
		return
	}

	result, err := h.svc.MarkNoShow(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Feedback records post-seminar feedback (admin).
// POST /api/v1/admin/seminars/registrations/:id/feedback
func (h *Handler) Feedback(c *gin.Context) {
	id, ok := h.registrationID(c)
	if !ok {
		return
	}

	var req transport.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, validator.FormatErrors(err), nil)
		return
	}

	result, err := h.svc.AddFeedback(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// FollowUps lists attendees interested in a follow-up (admin).
// GET /api/v1/admin/seminars/follow-ups?seminar_id=N
func (h *Handler) FollowUps(c *gin.Context) {
	var seminarID int64
	if raw := c.Query("seminar_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidSeminarID, nil)
			return
		}
		seminarID = parsed
	}

	result, err := h.svc.FollowUps(c.Request.Context(), seminarID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"follow_ups": result, "count": len(result)})
}

// Stats summarizes a seminar's outcomes (admin).
// GET /api/v1/admin/seminars/:id/stats
func (h *Handler) Stats(c *gin.Context) {
	id, ok := h.seminarID(c)
	if !ok {
		return
	}

	result, err := h.svc.Stats(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) seminarID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSeminarID, nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) registrationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRegistrationID, nil)
		return 0, false
	}
	return id, true
}
