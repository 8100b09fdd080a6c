package rest_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/rest"
	restTypes "github.com/atendix/atendix/internal/rest/types"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
)

const testGuildID = "100200300400500600"

func newTestServer(t *testing.T) (*httptest.Server, storage.Client, *types.GuildConfig) {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg, err := store.CreateGuildConfig(context.Background(), &types.GuildConfig{
		GuildID:   testGuildID,
		GuildName: "Servidor de Teste",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(rest.NewServer(store, zap.NewNop()))
	t.Cleanup(srv.Close)

	return srv, store, cfg
}

func doRequest(t *testing.T, method, url, key string, body []byte) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(v))
}

func TestHealthNeedsNoAuth(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	resp := doRequest(t, http.MethodGet, srv.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRejectsMissingAndBogusKeys(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/guild/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/guild/config", "deadbeefdeadbeefdeadbeefdeadbeef", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestValidateIdentifiesGuild(t *testing.T) {
	t.Parallel()

	srv, _, cfg := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/dashboard/auth/validate", cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body restTypes.ValidateResponse
	decodeBody(t, resp, &body)
	assert.True(t, body.Valid)
	assert.Equal(t, testGuildID, body.Guild)
	assert.Equal(t, "Servidor de Teste", body.Name)
}

func TestGetConfigStripsServerKey(t *testing.T) {
	t.Parallel()

	srv, _, cfg := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/guild/config", cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.NotContains(t, body, "serverKey")
	assert.Equal(t, testGuildID, body["guildId"])
}

func TestPatchConfigAppliesWhitelistedFields(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)

	patch, err := sonic.Marshal(map[string]any{
		"welcomeMessage": "Olá! Como podemos ajudar?",
		"aiEnabled":      true,
		"panelColor":     "#ff0000",
		"serverKey":      "attacker-controlled",
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/dashboard/guild/config", cfg.ServerKey, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := store.GetGuildConfig(context.Background(), testGuildID)
	require.NoError(t, err)
	assert.Equal(t, "Olá! Como podemos ajudar?", updated.WelcomeMessage)
	assert.True(t, updated.AIEnabled)
	assert.Equal(t, "#FF0000", updated.PanelColor)
	assert.Equal(t, cfg.ServerKey, updated.ServerKey)
}

func TestPatchConfigRejectsBadColor(t *testing.T) {
	t.Parallel()

	srv, _, cfg := newTestServer(t)

	patch, err := sonic.Marshal(map[string]any{"panelColor": "vermelho"})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/dashboard/guild/config", cfg.ServerKey, patch)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTicketListingAndFiltering(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	open, err := store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1,
		GuildID:      testGuildID,
		ChannelID:    "chan-1",
		UserID:       "user-1",
		UserName:     "Alice",
		Status:       types.TicketStatusOpen,
	})
	require.NoError(t, err)

	closedAt := time.Now()
	_, err = store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 2,
		GuildID:      testGuildID,
		ChannelID:    "chan-2",
		UserID:       "user-2",
		UserName:     "Bob",
		Status:       types.TicketStatusClosed,
		ClosedAt:     &closedAt,
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/tickets", cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all []*types.Ticket
	decodeBody(t, resp, &all)
	assert.Len(t, all, 2)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/tickets?status=open", cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var onlyOpen []*types.Ticket
	decodeBody(t, resp, &onlyOpen)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, open.ID, onlyOpen[0].ID)
}

func TestTicketTranscriptStaysGuildScoped(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	ticket, err := store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1,
		GuildID:      testGuildID,
		ChannelID:    "chan-1",
		UserID:       "user-1",
		UserName:     "Alice",
		Status:       types.TicketStatusOpen,
	})
	require.NoError(t, err)

	_, err = store.CreateTicketMessage(ctx, &types.TicketMessage{
		TicketID:   ticket.ID,
		MessageID:  "msg-1",
		AuthorID:   "user-1",
		AuthorName: "Alice",
		Content:    "Preciso de ajuda",
	})
	require.NoError(t, err)

	foreign, err := store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1,
		GuildID:      "999888777666555444",
		ChannelID:    "chan-x",
		UserID:       "user-x",
		UserName:     "Mallory",
		Status:       types.TicketStatusOpen,
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/tickets/"+ticket.ID, cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail restTypes.TicketDetail
	decodeBody(t, resp, &detail)
	require.NotNil(t, detail.Ticket)
	assert.Equal(t, ticket.ID, detail.Ticket.ID)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "Preciso de ajuda", detail.Messages[0].Content)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/tickets/"+foreign.ID, cfg.ServerKey, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	ticket, err := store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1,
		GuildID:      testGuildID,
		ChannelID:    "chan-1",
		UserID:       "user-1",
		UserName:     "Alice",
		Status:       types.TicketStatusOpen,
	})
	require.NoError(t, err)

	_, err = store.CreateFeedback(ctx, &types.Feedback{
		TicketID: ticket.ID,
		GuildID:  testGuildID,
		UserID:   "user-1",
		UserName: "Alice",
		Rating:   5,
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/stats", cfg.ServerKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats types.TicketStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.TotalTickets)
	assert.Equal(t, 1, stats.OpenTickets)
	assert.Equal(t, 1, stats.TotalFeedbacks)
	assert.InDelta(t, 5.0, stats.AverageRating, 0.001)
}

func TestAuthKeyExchange(t *testing.T) {
	t.Parallel()

	srv, _, cfg := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/auth/key", "", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bogus, err := sonic.Marshal(restTypes.AuthKeyRequest{ServerKey: "deadbeefdeadbeefdeadbeefdeadbeef"})
	require.NoError(t, err)
	resp = doRequest(t, http.MethodPost, srv.URL+"/api/auth/key", "", bogus)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	valid, err := sonic.Marshal(restTypes.AuthKeyRequest{ServerKey: cfg.ServerKey})
	require.NoError(t, err)
	resp = doRequest(t, http.MethodPost, srv.URL+"/api/auth/key", "", valid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, testGuildID, body["guildId"])
	assert.NotContains(t, body, "serverKey")
}

func TestBotStatusNeedsNoAuth(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/bot/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status restTypes.BotStatusResponse
	decodeBody(t, resp, &status)
	assert.True(t, status.Online)
	assert.Equal(t, 1, status.GuildCount)
}

func TestPatchConfigRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	srv, _, cfg := newTestServer(t)

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/dashboard/guild/config", cfg.ServerKey, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPanelLifecycle(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	create, err := sonic.Marshal(restTypes.PanelCreateRequest{
		ChannelID:  "chan-1",
		Title:      "Suporte",
		EmbedColor: "#ff8800",
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/dashboard/panels", cfg.ServerKey, create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var detail restTypes.PanelDetail
	decodeBody(t, resp, &detail)
	require.NotNil(t, detail.Panel)
	assert.Equal(t, "Suporte", detail.Panel.Title)
	assert.Equal(t, "#FF8800", detail.Panel.EmbedColor)
	assert.Empty(t, detail.Options)

	panelID := detail.Panel.ID

	patch, err := sonic.Marshal(map[string]any{"title": "Atendimento"})
	require.NoError(t, err)
	resp = doRequest(t, http.MethodPatch, srv.URL+"/api/dashboard/panels/"+panelID, cfg.ServerKey, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated types.TicketPanel
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Atendimento", updated.Title)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/dashboard/panels/"+panelID, cfg.ServerKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	gone, err := store.GetPanel(ctx, panelID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPanelButtonLifecycle(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	panel, err := store.CreatePanel(ctx, &types.TicketPanel{
		GuildID:   testGuildID,
		ChannelID: "chan-1",
		CreatedBy: "user-1",
		Title:     "Suporte",
	})
	require.NoError(t, err)

	create, err := sonic.Marshal(restTypes.ButtonCreateRequest{
		Label: "Dúvidas",
		Style: "success",
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/dashboard/panels/"+panel.ID+"/buttons", cfg.ServerKey, create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var button types.PanelButton
	decodeBody(t, resp, &button)
	assert.Equal(t, "Dúvidas", button.Label)
	assert.Equal(t, types.ButtonStyleSuccess, button.Style)
	assert.Equal(t, 0, button.Order)

	patch, err := sonic.Marshal(map[string]any{"label": "Financeiro", "style": "danger"})
	require.NoError(t, err)
	resp = doRequest(t, http.MethodPatch, srv.URL+"/api/dashboard/buttons/"+button.ID, cfg.ServerKey, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var edited types.PanelButton
	decodeBody(t, resp, &edited)
	assert.Equal(t, "Financeiro", edited.Label)
	assert.Equal(t, types.ButtonStyleDanger, edited.Style)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/dashboard/buttons/"+button.ID, cfg.ServerKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	remaining, err := store.GetPanelButtons(ctx, panel.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestPanelAccessStaysGuildScoped(t *testing.T) {
	t.Parallel()

	srv, store, cfg := newTestServer(t)
	ctx := context.Background()

	foreign, err := store.CreatePanel(ctx, &types.TicketPanel{
		GuildID:   "999888777666555444",
		ChannelID: "chan-x",
		CreatedBy: "user-x",
		Title:     "Alheio",
	})
	require.NoError(t, err)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/dashboard/panels/"+foreign.ID, cfg.ServerKey, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/dashboard/panels/"+foreign.ID, cfg.ServerKey, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
