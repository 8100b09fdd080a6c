// Package rest exposes the web dashboard API. The key exchange endpoint
// is public; everything under /api/dashboard requires the guild's server
// key as a bearer token.
package rest

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/rest/handler"
	"github.com/atendix/atendix/internal/rest/middleware/auth"
	"github.com/atendix/atendix/internal/rest/middleware/requestid"
	"github.com/atendix/atendix/internal/rest/middleware/timeout"
	"github.com/atendix/atendix/internal/storage"
)

// Server bundles the dashboard API handlers.
type Server struct {
	guildHandler    *handler.GuildHandler
	ticketHandler   *handler.TicketHandler
	feedbackHandler *handler.FeedbackHandler
	panelHandler    *handler.PanelHandler
}

// NewServer builds the dashboard API router.
func NewServer(store storage.Client, logger *zap.Logger) http.Handler {
	restLogger := logger.Named("rest")
	server := &Server{
		guildHandler:    handler.NewGuildHandler(store, restLogger),
		ticketHandler:   handler.NewTicketHandler(store, restLogger),
		feedbackHandler: handler.NewFeedbackHandler(store, restLogger),
		panelHandler:    handler.NewPanelHandler(store, restLogger),
	}

	authMiddleware := auth.New(store, logger)
	requestIDMiddleware := requestid.New(logger)

	router := bunrouter.New()

	router.GET("/health", func(w http.ResponseWriter, _ bunrouter.Request) error {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		return err
	})

	router.Use(requestIDMiddleware.AsRESTMiddleware).
		Use(timeout.AsRESTMiddleware).
		WithGroup("/api", func(api *bunrouter.Group) {
			api.POST("/auth/key", server.guildHandler.AuthKey)
			api.GET("/bot/status", server.guildHandler.BotStatus)

			api.Use(authMiddleware.AsRESTMiddleware).
				WithGroup("/dashboard", func(g *bunrouter.Group) {
					g.POST("/auth/validate", server.guildHandler.Validate)
					g.GET("/guild/config", server.guildHandler.GetConfig)
					g.PATCH("/guild/config", server.guildHandler.PatchConfig)
					g.GET("/tickets", server.ticketHandler.ListTickets)
					g.GET("/tickets/:id", server.ticketHandler.GetTicket)
					g.GET("/stats", server.ticketHandler.GetStats)
					g.GET("/feedbacks", server.feedbackHandler.ListFeedbacks)
					g.GET("/panels", server.panelHandler.ListPanels)
					g.POST("/panels", server.panelHandler.CreatePanel)
					g.GET("/panels/:id", server.panelHandler.GetPanel)
					g.PATCH("/panels/:id", server.panelHandler.PatchPanel)
					g.DELETE("/panels/:id", server.panelHandler.DeletePanel)
					g.POST("/panels/:id/buttons", server.panelHandler.CreateButton)
					g.PATCH("/buttons/:id", server.panelHandler.PatchButton)
					g.DELETE("/buttons/:id", server.panelHandler.DeleteButton)
				})
		})

	return gzhttp.GzipHandler(router)
}
