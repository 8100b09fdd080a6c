// Package auth authenticates dashboard requests with the guild's server key.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

type guildConfigCtxKey struct{}

// FromContext retrieves the authenticated guild's config. It is only set on
// requests that passed the middleware.
func FromContext(ctx context.Context) *types.GuildConfig {
	cfg, _ := ctx.Value(guildConfigCtxKey{}).(*types.GuildConfig)
	return cfg
}

// Middleware resolves the Bearer token to a guild config.
type Middleware struct {
	store  storage.Client
	logger *zap.Logger
}

// New creates the auth middleware.
func New(store storage.Client, logger *zap.Logger) *Middleware {
	return &Middleware{
		store:  store,
		logger: logger.Named("rest_auth"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware that rejects requests
// without a valid server key.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		key, ok := bearerToken(req.Header.Get("Authorization"))
		if !ok {
			http.Error(w, "Missing or malformed Authorization header", http.StatusUnauthorized)
			return nil
		}

		cfg, err := m.store.GetGuildConfigByKey(req.Context(), key)
		if err != nil {
			m.logger.Error("Failed to resolve server key", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return nil
		}
		if cfg == nil {
			http.Error(w, "Invalid server key", http.StatusUnauthorized)
			return nil
		}

		ctx := context.WithValue(req.Context(), guildConfigCtxKey{}, cfg)
		return next(w, req.WithContext(ctx))
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
