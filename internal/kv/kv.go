// Package kv provides the flat key-value document store backing all of
// Dopamine's persisted state. Every logical document (app state, invoices,
// email inquiries, OAuth tokens, poll bookmarks) lives under a single string
// key as an opaque JSON value.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value is stored under the given key.
var ErrNotFound = errors.New("kv: key not found")

// ErrUnavailable is returned by the Disabled store. Callers treat reads as
// "no prior state" and writes as silent no-ops (persisted: false).
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is the capability interface handlers and background jobs depend on.
// Implementations: Postgres (production), Memory (tests, local dev), and
// Disabled (no backend configured).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Available reports whether the store can actually persist data.
func Available(s Store) bool {
	_, disabled := s.(*Disabled)
	return s != nil && !disabled
}
