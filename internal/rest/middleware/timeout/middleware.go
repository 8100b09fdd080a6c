// Package timeout bounds dashboard request handling.
package timeout

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/bunrouter"
)

// RequestTimeout is the hard ceiling for one dashboard request.
const RequestTimeout = 30 * time.Second

// AsRESTMiddleware returns a bunrouter middleware that attaches a deadline
// to the request context. Handlers observe it through their store calls.
func AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		ctx, cancel := context.WithTimeout(req.Context(), RequestTimeout)
		defer cancel()
		return next(w, req.WithContext(ctx))
	}
}
