// Package router maps component custom IDs to handlers through an explicit
// routing table: exact entries first, then the longest registered prefix.
package router

import (
	"sort"
	"strings"
)

// Handler processes one interaction. arg carries the part of the custom ID
// after a prefix route, and is empty for exact routes.
type Handler[E any] func(event E, arg string) error

type prefixRoute[E any] struct {
	prefix  string
	handler Handler[E]
}

// Router dispatches custom IDs for one event type.
type Router[E any] struct {
	exact    map[string]Handler[E]
	prefixes []prefixRoute[E]
	sorted   bool
}

// New creates an empty Router.
func New[E any]() *Router[E] {
	return &Router[E]{exact: make(map[string]Handler[E])}
}

// Handle registers an exact custom ID.
func (r *Router[E]) Handle(customID string, handler Handler[E]) {
	r.exact[customID] = handler
}

// HandlePrefix registers a prefix route. The handler receives the custom ID
// with the prefix stripped.
func (r *Router[E]) HandlePrefix(prefix string, handler Handler[E]) {
	r.prefixes = append(r.prefixes, prefixRoute[E]{prefix: prefix, handler: handler})
	r.sorted = false
}

// Dispatch routes the custom ID. Returns false when nothing matches.
func (r *Router[E]) Dispatch(customID string, event E) (bool, error) {
	if handler, ok := r.exact[customID]; ok {
		return true, handler(event, "")
	}

	if !r.sorted {
		// Longest prefix wins, so "feedback_comment_" beats "feedback_".
		sort.SliceStable(r.prefixes, func(i, j int) bool {
			return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
		})
		r.sorted = true
	}

	for _, route := range r.prefixes {
		if strings.HasPrefix(customID, route.prefix) {
			return true, route.handler(event, strings.TrimPrefix(customID, route.prefix))
		}
	}
	return false, nil
}
