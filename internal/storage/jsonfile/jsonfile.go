// Package jsonfile implements the storage facade on a single JSON file.
// It exists for development and small installs without a Postgres server;
// every write rewrites the file, so it is not meant for heavy traffic.
package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/storage/types"
)

// snapshot is the on-disk layout. Maps are keyed by record ID.
type snapshot struct {
	GuildConfigs   map[string]*types.GuildConfig   `json:"guildConfigs"`
	Tickets        map[string]*types.Ticket        `json:"tickets"`
	TicketMessages map[string]*types.TicketMessage `json:"ticketMessages"`
	Feedbacks      map[string]*types.Feedback      `json:"feedbacks"`
	Panels         map[string]*types.TicketPanel   `json:"panels"`
	PanelButtons   map[string]*types.PanelButton   `json:"panelButtons"`
}

// Client keeps all records in memory and mirrors them to disk after each
// mutation.
type Client struct {
	mu     sync.RWMutex
	path   string
	data   snapshot
	logger *zap.Logger
}

// New loads the file at path if it exists and returns a ready client.
func New(path string, logger *zap.Logger) (*Client, error) {
	c := &Client{
		path:   path,
		logger: logger.Named("storage_json"),
		data: snapshot{
			GuildConfigs:   make(map[string]*types.GuildConfig),
			Tickets:        make(map[string]*types.Ticket),
			TicketMessages: make(map[string]*types.TicketMessage),
			Feedbacks:      make(map[string]*types.Feedback),
			Panels:         make(map[string]*types.TicketPanel),
			PanelButtons:   make(map[string]*types.PanelButton),
		},
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := sonic.Unmarshal(raw, &c.data); err != nil {
			return nil, fmt.Errorf("failed to parse storage file %s: %w", path, err)
		}
		c.logger.Info("Loaded storage file",
			zap.String("path", path),
			zap.Int("guilds", len(c.data.GuildConfigs)),
			zap.Int("tickets", len(c.data.Tickets)))
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		c.logger.Info("Starting with empty storage file", zap.String("path", path))
	default:
		return nil, fmt.Errorf("failed to read storage file %s: %w", path, err)
	}

	return c, nil
}

// flush writes the whole snapshot to disk. Callers must hold the write lock.
func (c *Client) flush() error {
	raw, err := sonic.ConfigDefault.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage snapshot: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	return nil
}

// Close is a no-op; every mutation is already on disk.
func (c *Client) Close() error { return nil }

func newID() string { return uuid.NewString() }

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// sortByCreated orders records newest first, matching the dashboard listings.
func sortByCreated[T any](items []*T, at func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}
