// Package modal is the console's single form overlay: a two-state machine
// whose save action is supplied by whoever opened it.
package modal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
)

// GenericFailure is shown when a save action fails without a user-facing message.
const GenericFailure = "Save failed. See console for details."

// State is the visibility of the modal.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Body selects the form or view rendered inside the modal.
type Body struct {
	Template string
	Data     any
}

// SaveFunc is invoked with the submitted form when the user saves.
type SaveFunc func(ctx context.Context, form url.Values) error

// UserError carries a message safe to show in the console.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// Userf returns a UserError with a formatted message.
func Userf(format string, args ...any) error {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return GenericFailure
}

// View is a point-in-time copy of the modal for rendering.
type View struct {
	Visible bool
	Title   string
	Body    Body
	Error   string
	// Values holds the last submitted form so a failed save re-renders
	// with what the user typed.
	Values url.Values
}

// Value returns the submitted value for key, or fallback before any submission.
func (v View) Value(key, fallback string) string {
	if v.Values == nil {
		return fallback
	}
	return v.Values.Get(key)
}

// Controller holds the modal state for one console session.
// It is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	state  State
	title  string
	body   Body
	onSave SaveFunc
	errMsg string
	values url.Values
	// gen increments on every Show and hide so a save that finishes after
	// the modal was replaced or closed leaves the new state alone.
	gen uint64
}

// New returns a hidden controller.
func New() *Controller {
	return &Controller{}
}

// Show replaces the title, body and save action and makes the modal visible.
// A previously registered action is discarded. onSave may be nil for
// read-only views.
func (c *Controller) Show(title string, body Body, onSave SaveFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Visible
	c.title = title
	c.body = body
	c.onSave = onSave
	c.errMsg = ""
	c.values = nil
}

// Save runs the registered action.
// POST: on success the modal is Hidden and nil is returned; on failure it
// stays Visible with an error message and the error is returned.
// Saving a hidden modal, or one without an action, does nothing.
func (c *Controller) Save(ctx context.Context, form url.Values) error {
	c.mu.Lock()
	if c.state != Visible || c.onSave == nil {
		c.mu.Unlock()
		return nil
	}
	onSave, title, gen := c.onSave, c.title, c.gen
	c.mu.Unlock()

	// The action runs unlocked so a slow store call does not block rendering.
	err := onSave(ctx, form)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slog.Error("modal_save_failed", "title", title, "error", err)
	}
	if c.gen != gen {
		return err
	}
	if err != nil {
		c.errMsg = Message(err)
		c.values = form
		return err
	}
	c.hideLocked()
	return nil
}

// Cancel hides the modal unconditionally.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

func (c *Controller) hideLocked() {
	c.gen++
	c.state = Hidden
	c.title = ""
	c.body = Body{}
	c.onSave = nil
	c.errMsg = ""
	c.values = nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns a snapshot for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Visible: c.state == Visible,
		Title:   c.title,
		Body:    c.body,
		Error:   c.errMsg,
		Values:  c.values,
	}
}
