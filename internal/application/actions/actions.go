// Package actions dispatches the row buttons of a table body to handlers.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Action names a row button.
type Action string

const (
	Edit   Action = "edit"
	Delete Action = "delete"
	View   Action = "view"
)

// Dispatch errors
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingID     = errors.New("action requires a row id")
)

// Handler runs an action against the row with the given id.
type Handler func(ctx context.Context, id string) error

// Table maps the actions a table body offers to their handlers.
type Table map[Action]Handler

// Parse normalizes a raw action name.
func Parse(raw string) Action {
	return Action(strings.ToLower(strings.TrimSpace(raw)))
}

// Dispatch runs the handler registered for raw.
// PRE: raw and id come from a submitted row form
// POST: returns ErrUnknownAction or ErrMissingID without calling any handler
func (t Table) Dispatch(ctx context.Context, raw, id string) error {
	a := Parse(raw)
	h, ok := t[a]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%s: %w", a, ErrMissingID)
	}
	return h(ctx, id)
}

// Has reports whether the table handles a.
func (t Table) Has(a Action) bool {
	_, ok := t[a]
	return ok
}
