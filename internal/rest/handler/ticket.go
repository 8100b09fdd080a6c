package handler

import (
	"net/http"

	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/rest/middleware/auth"
	restTypes "github.com/atendix/atendix/internal/rest/types"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// TicketHandler serves the ticket listing and transcript endpoints.
type TicketHandler struct {
	store  storage.Client
	logger *zap.Logger
}

// NewTicketHandler creates the ticket handler.
func NewTicketHandler(store storage.Client, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		store:  store,
		logger: logger,
	}
}

// ListTickets returns the guild's tickets, newest first. An optional
// ?status= query narrows the list to one lifecycle state.
func (h *TicketHandler) ListTickets(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	tickets, err := h.store.GetTicketsByGuild(req.Context(), cfg.GuildID)
	if err != nil {
		h.logger.Error("Failed to list tickets", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	if status := req.URL.Query().Get("status"); status != "" {
		filtered := make([]*types.Ticket, 0, len(tickets))
		for _, t := range tickets {
			if string(t.Status) == status {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	return bunrouter.JSON(w, tickets)
}

// GetTicket returns one ticket together with its transcript. Tickets of
// other guilds are invisible, not forbidden.
func (h *TicketHandler) GetTicket(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	ticket, err := h.store.GetTicket(req.Context(), req.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get ticket", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	if ticket == nil || ticket.GuildID != cfg.GuildID {
		http.Error(w, "Ticket not found", http.StatusNotFound)
		return nil
	}

	messages, err := h.store.GetTicketMessages(req.Context(), ticket.ID)
	if err != nil {
		h.logger.Error("Failed to get ticket messages", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	return bunrouter.JSON(w, restTypes.TicketDetail{
		Ticket:   ticket,
		Messages: messages,
	})
}

// GetStats returns the guild's ticket counters and feedback average.
func (h *TicketHandler) GetStats(w http.ResponseWriter, req bunrouter.Request) error {
	cfg := auth.FromContext(req.Context())

	stats, err := h.store.GetTicketStats(req.Context(), cfg.GuildID)
	if err != nil {
		h.logger.Error("Failed to get ticket stats", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}
	return bunrouter.JSON(w, stats)
}
