package handler

import (
	"net/http"

	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/rest/middleware/auth"
	"github.com/atendix/atendix/internal/storage"
)

// FeedbackHandler serves the feedback listing endpoint.
type FeedbackHandler struct {
	store  storage.Client
	logger *zap.Logger
}

// NewFeedbackHandler creates the feedback handler.
func NewFeedbackHandler(store storage.Client, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		store:  store,
		logger: logger,
	}
}

// ListFeedbacks returns the guild's ratings, newest first.
func (h *FeedbackHandler) ListFeedbacks(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	feedbacks, err := h.store.GetFeedbacksByGuild(req.Context(), cfg.GuildID)
	if err != nil {
		h.logger.Error("Failed to list feedbacks", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, feedbacks)
}
