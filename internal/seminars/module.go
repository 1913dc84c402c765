// Package seminars provides the seminar bounded context: public listing
// and RSVP plus the admin attendance and feedback workflow.
package seminars

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"provision_chat_backend/internal/events"
	apphttp "provision_chat_backend/internal/http"
	"provision_chat_backend/internal/seminars/handler"
	"provision_chat_backend/internal/seminars/repository"
	"provision_chat_backend/internal/seminars/service"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/validator"
)

// Module is the seminars bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the seminars module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "seminars"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for scheduler access.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the seminar routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/seminars", m.handler.ListUpcoming)
	ctx.V1.GET("/seminars/:id", m.handler.Get)
	ctx.V1.POST("/seminars/:id/register", m.handler.Register)

	adminGroup := ctx.Admin.Group("/seminars")
	adminGroup.POST("", m.handler.Create)
	adminGroup.GET("/follow-ups", m.handler.FollowUps)
	adminGroup.GET("/:id/registrations", m.handler.Registrations)
	adminGroup.GET("/:id/stats", m.handler.Stats)
	adminGroup.POST("/registrations/:id/check-in", m.handler.CheckIn)
	adminGroup.POST("/registrations/:id/no-show", m.handler.NoShow)
	adminGroup.POST("/registrations/:id/feedback", m.handler.Feedback)
}
