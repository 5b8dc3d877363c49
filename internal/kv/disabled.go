package kv

import "context"

// Disabled is the Store used when no database is configured (local development
// without a backend). Reads behave as "nothing stored" and writes fail with
// ErrUnavailable so handlers can report persisted: false without erroring.
type Disabled struct{}

// NewDisabled creates a Disabled store.
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) Get(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (d *Disabled) Put(context.Context, string, string) error {
	return ErrUnavailable
}

func (d *Disabled) Delete(context.Context, string) error {
	return ErrUnavailable
}
