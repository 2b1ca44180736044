package routes

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/taaskly/taaskly/internal/app/linkshare"
	"github.com/taaskly/taaskly/internal/app/ports"
	linkwebhook "github.com/taaskly/taaskly/internal/webhooks/link"
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	link *linkwebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(store ports.LinkStore, cfg linkshare.Config, log *slog.Logger) *WebhookRoutes {
	service := linkshare.NewService(store, cfg, log)
	return &WebhookRoutes{link: linkwebhook.NewHandler(service, log)}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/api/callback", w.handleLinkWebhook)
}

func (w *WebhookRoutes) handleLinkWebhook(c echo.Context) error {
	return w.link.Handle(c.Response(), c.Request())
}
