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
	"github.com/atendix/atendix/internal/storage/types"
)

// PanelHandler serves the panel and panel option endpoints.
type PanelHandler struct {
	store  storage.Client
	logger *zap.Logger
}

// NewPanelHandler creates the panel handler.
func NewPanelHandler(store storage.Client, logger *zap.Logger) *PanelHandler {
	return &PanelHandler{
		store:  store,
		logger: logger,
	}
}

// ListPanels returns the guild's panels together with their options.
func (h *PanelHandler) ListPanels(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	panels, err := h.store.GetPanelsByGuild(req.Context(), cfg.GuildID)
	if err != nil {
		h.logger.Error("Failed to list panels", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	details := make([]restTypes.PanelDetail, 0, len(panels))
	for _, p := range panels {
		options, err := h.store.GetPanelButtons(req.Context(), p.ID)
		if err != nil {
			h.logger.Error("Failed to list panel options",
				zap.String("panel_id", p.ID), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return nil
		}
		details = append(details, restTypes.PanelDetail{
			Panel:   p,
			Options: options,
		})
	}

	return bunrouter.JSON(w, details)
}

// GetPanel returns one panel with its options.
func (h *PanelHandler) GetPanel(w http.ResponseWriter, req bunrouter.Request) error {
	p, ok := h.guildPanel(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	options, err := h.store.GetPanelButtons(req.Context(), p.ID)
	if err != nil {
		h.logger.Error("Failed to list panel options", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, restTypes.PanelDetail{Panel: p, Options: options})
}

// CreatePanel stores a new unpublished panel for the guild.
func (h *PanelHandler) CreatePanel(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	var body restTypes.PanelCreateRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return nil
	}
	if body.ChannelID == "" {
		http.Error(w, "channelId is required", http.StatusBadRequest)
		return nil
	}
	if body.EmbedColor != "" {
		normalized, ok := discordgw.NormalizeColor(body.EmbedColor)
		if !ok {
			http.Error(w, "Invalid embed color", http.StatusBadRequest)
			return nil
		}
		body.EmbedColor = normalized
	}

	created, err := h.store.CreatePanel(req.Context(), &types.TicketPanel{
		GuildID:        cfg.GuildID,
		ChannelID:      body.ChannelID,
		CreatedBy:      "dashboard",
		Title:          body.Title,
		Description:    body.Description,
		EmbedColor:     body.EmbedColor,
		CategoryID:     body.CategoryID,
		WelcomeMessage: body.WelcomeMessage,
		RequireReason:  body.RequireReason,
	})
	if err != nil {
		h.logger.Error("Failed to create panel", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	w.WriteHeader(http.StatusCreated)
	return bunrouter.JSON(w, restTypes.PanelDetail{Panel: created, Options: []*types.PanelButton{}})
}

// PatchPanel applies partial panel edits.
func (h *PanelHandler) PatchPanel(w http.ResponseWriter, req bunrouter.Request) error {
	p, ok := h.guildPanel(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	var body restTypes.PanelPatchRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return nil
	}
	if body.EmbedColor != nil {
		normalized, ok := discordgw.NormalizeColor(*body.EmbedColor)
		if !ok {
			http.Error(w, "Invalid embed color", http.StatusBadRequest)
			return nil
		}
		body.EmbedColor = &normalized
	}

	updated, err := h.store.UpdatePanel(req.Context(), p.ID, storage.PanelUpdate{
		Title:          body.Title,
		Description:    body.Description,
		EmbedColor:     body.EmbedColor,
		CategoryID:     body.CategoryID,
		WelcomeMessage: body.WelcomeMessage,
		RequireReason:  body.RequireReason,
	})
	if err != nil {
		h.logger.Error("Failed to update panel", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, updated)
}

// DeletePanel removes a panel and its options.
func (h *PanelHandler) DeletePanel(w http.ResponseWriter, req bunrouter.Request) error {
	p, ok := h.guildPanel(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	if err := h.store.DeletePanel(req.Context(), p.ID); err != nil {
		h.logger.Error("Failed to delete panel", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// CreateButton adds an option to a panel.
func (h *PanelHandler) CreateButton(w http.ResponseWriter, req bunrouter.Request) error {
	p, ok := h.guildPanel(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	var body restTypes.ButtonCreateRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return nil
	}
	if body.Label == "" {
		http.Error(w, "label is required", http.StatusBadRequest)
		return nil
	}

	existing, err := h.store.GetPanelButtons(req.Context(), p.ID)
	if err != nil {
		h.logger.Error("Failed to list panel options", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	created, err := h.store.CreatePanelButton(req.Context(), &types.PanelButton{
		PanelID: p.ID,
		Label:   body.Label,
		Emoji:   body.Emoji,
		Style:   types.ParseButtonStyle(body.Style),
		Order:   len(existing),
	})
	if err != nil {
		h.logger.Error("Failed to create panel option", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	w.WriteHeader(http.StatusCreated)
	return bunrouter.JSON(w, created)
}

// PatchButton edits one panel option.
func (h *PanelHandler) PatchButton(w http.ResponseWriter, req bunrouter.Request) error {
	button, ok := h.guildButton(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	var body restTypes.ButtonPatchRequest
	if err := sonic.ConfigDefault.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return nil
	}

	update := storage.ButtonUpdate{
		Label: body.Label,
		Emoji: body.Emoji,
		Order: body.Order,
	}
	if body.Style != nil {
		style := types.ParseButtonStyle(*body.Style)
		update.Style = &style
	}

	updated, err := h.store.UpdatePanelButton(req.Context(), button.ID, update)
	if err != nil {
		h.logger.Error("Failed to update panel option", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, updated)
}

// DeleteButton removes one panel option.
func (h *PanelHandler) DeleteButton(w http.ResponseWriter, req bunrouter.Request) error {
	button, ok := h.guildButton(w, req, req.Param("id"))
	if !ok {
		return nil
	}

	if err := h.store.DeletePanelButton(req.Context(), button.ID); err != nil {
		h.logger.Error("Failed to delete panel option", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// guildPanel loads a panel and enforces guild scoping. Panels of other
// guilds are indistinguishable from missing ones.
func (h *PanelHandler) guildPanel(w http.ResponseWriter, req bunrouter.Request, id string) (*types.TicketPanel, bool) {
	cfg := auth.FromContext(req.Context())

	p, err := h.store.GetPanel(req.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get panel", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if p == nil || p.GuildID != cfg.GuildID {
		http.Error(w, "Panel not found", http.StatusNotFound)
		return nil, false
	}
	return p, true
}

// guildButton resolves an option through its panel's guild.
func (h *PanelHandler) guildButton(w http.ResponseWriter, req bunrouter.Request, id string) (*types.PanelButton, bool) {
	cfg := auth.FromContext(req.Context())

	buttonPanelID := ""
	var found *types.PanelButton

	panels, err := h.store.GetPanelsByGuild(req.Context(), cfg.GuildID)
	if err != nil {
		h.logger.Error("Failed to list panels", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	for _, p := range panels {
		options, err := h.store.GetPanelButtons(req.Context(), p.ID)
		if err != nil {
			h.logger.Error("Failed to list panel options", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return nil, false
		}
		for _, opt := range options {
			if opt.ID == id {
				found = opt
				buttonPanelID = p.ID
				break
			}
		}
		if found != nil {
			break
		}
	}

	if found == nil || buttonPanelID == "" {
		http.Error(w, "Option not found", http.StatusNotFound)
		return nil, false
	}
	return found, true
}
