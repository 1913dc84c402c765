// Package chat provides the conversational bounded context: the chat
// endpoint, appointment booking, and conversation history.
package chat

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"provision_chat_backend/internal/chat/handler"
	"provision_chat_backend/internal/chat/qualification"
	"provision_chat_backend/internal/chat/repository"
	"provision_chat_backend/internal/chat/service"
	"provision_chat_backend/internal/events"
	apphttp "provision_chat_backend/internal/http"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/validator"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule wires the chat module. The AI, booking, and lead
// collaborators are injected by the composition root.
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	log *logger.Logger,
	bus events.Bus,
	extractor service.Extractor,
	generator service.ReplyGenerator,
	booking service.BookingClient,
	leads service.LeadStore,
	thresholds qualification.Thresholds,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, extractor, generator, booking, leads, bus, thresholds, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the chat routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/chat", ctx.ChatRateLimiter.RateLimit(), m.handler.ProcessMessage)
	ctx.V1.GET("/chat/:session_id/history", m.handler.History)

	ctx.V1.POST("/appointments", m.handler.BookAppointment)
	ctx.V1.GET("/appointments/availability", m.handler.Availability)
}
