package handler

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/rest/middleware/auth"
	restTypes "github.com/atendix/atendix/internal/rest/types"
	"github.com/atendix/atendix/internal/storage"
)

// GuildHandler serves the guild configuration endpoints.
type GuildHandler struct {
	store  storage.Client
	logger *zap.Logger
}

// NewGuildHandler creates the guild config handler.
func NewGuildHandler(store storage.Client, logger *zap.Logger) *GuildHandler {
	return &GuildHandler{
		store:  store,
		logger: logger,
	}
}

// AuthKey exchanges a server key for the guild identity. This is the only
// dashboard route that reads the key from the body instead of the
// Authorization header; the key is never echoed back.
func (h *GuildHandler) AuthKey(w http.ResponseWriter, req bunrouter.Request) error {
	var body restTypes.AuthKeyRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil || body.ServerKey == "" {
		http.Error(w, "Missing server key", http.StatusBadRequest)
		return nil
	}

	cfg, err := h.store.GetGuildConfigByKey(req.Context(), body.ServerKey)
	if err != nil {
		h.logger.Error("Failed to resolve server key", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	if cfg == nil {
		http.Error(w, "Invalid server key", http.StatusUnauthorized)
		return nil
	}

	return bunrouter.JSON(w, restTypes.ValidateResponse{
		Valid: true,
		Guild: cfg.GuildID,
		Name:  cfg.GuildName,
		Icon:  cfg.GuildIcon,
	})
}

// Validate confirms the server key and identifies the guild.
func (h *GuildHandler) Validate(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())
	return bunrouter.JSON(w, restTypes.ValidateResponse{
		Valid: true,
		Guild: cfg.GuildID,
		Name:  cfg.GuildName,
		Icon:  cfg.GuildIcon,
	})
}

// BotStatus reports whether the bot side is reachable through the shared
// store, plus how many guilds it serves.
func (h *GuildHandler) BotStatus(w http.ResponseWriter, req bunrouter.Request) error {
	configs, err := h.store.GetAllGuildConfigs(req.Context())
	if err != nil {
		h.logger.Error("Failed to count guilds", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, restTypes.BotStatusResponse{
		Online:     true,
		GuildCount: len(configs),
	})
}

// GetConfig returns the guild settings with the server key stripped.
func (h *GuildHandler) GetConfig(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())
	return bunrouter.JSON(w, cfg.Sanitized())
}

// PatchConfig applies whitelisted setting changes. Unknown fields are
// ignored; the server key can never be changed through this endpoint.
func (h *GuildHandler) PatchConfig(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	var patch restTypes.ConfigPatchRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&patch); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return nil
	}

	if (restTypes.ConfigPatchRequest{}) == patch {
		http.Error(w, "No patchable fields in request", http.StatusBadRequest)
		return nil
	}

	if patch.PanelColor != nil {
		normalized, ok := discordgw.NormalizeColor(*patch.PanelColor)
		if !ok {
			http.Error(w, "Invalid panel color", http.StatusBadRequest)
			return nil
		}
		patch.PanelColor = &normalized
	}

	updated, err := h.store.UpdateGuildConfig(req.Context(), cfg.GuildID, storage.GuildConfigUpdate{
		WelcomeMessage:    patch.WelcomeMessage,
		StaffRoleID:       patch.StaffRoleID,
		TicketCategoryID:  patch.TicketCategoryID,
		LogChannelID:      patch.LogChannelID,
		FeedbackChannelID: patch.FeedbackChannelID,
		AIEnabled:         patch.AIEnabled,
		AISystemPrompt:    patch.AISystemPrompt,
		PanelTitle:        patch.PanelTitle,
		PanelDescription:  patch.PanelDescription,
		PanelButtonText:   patch.PanelButtonText,
		PanelColor:        patch.PanelColor,
	})
	if err != nil {
		h.logger.Error("Failed to update guild config", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	return bunrouter.JSON(w, updated.Sanitized())
}
