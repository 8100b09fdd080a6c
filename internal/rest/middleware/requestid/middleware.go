// Package requestid tags every request with an identifier for log
// correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Header carries the request identifier on responses.
const Header = "X-Request-Id"

// Middleware assigns request IDs and logs request completion.
type Middleware struct {
	logger *zap.Logger
}

// New creates the request ID middleware.
func New(logger *zap.Logger) *Middleware {
	return &Middleware{
		logger: logger.Named("rest_request"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware that stamps each request
// with an ID, reusing the caller's when present.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		id := req.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)

		err := next(w, req)
		if err != nil {
			m.logger.Error("Request failed",
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Error(err))
		}
		return err
	}
}
