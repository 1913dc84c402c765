// Package leads provides the lead-management bounded context: capture of
// qualified prospects and the admin listing/statistics API.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"provision_chat_backend/internal/events"
	apphttp "provision_chat_backend/internal/http"
	"provision_chat_backend/internal/leads/handler"
	"provision_chat_backend/internal/leads/repository"
	"provision_chat_backend/internal/leads/service"
	"provision_chat_backend/platform/logger"
	"provision_chat_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module.
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
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/leads")
	group.GET("", m.handler.List)
	group.GET("/stats", m.handler.Stats)
	group.GET("/:id", m.handler.Get)
}
