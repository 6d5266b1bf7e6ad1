package orchestrators

import (
	"context"
	"log/slog"
)

// SessionDeleter forgets a session token.
type SessionDeleter interface {
	Delete(token string)
}

// ConsoleReleaser drops the console state of a session.
type ConsoleReleaser interface {
	Release(token string)
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Token string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionDeleter
	Consoles ConsoleReleaser
	// SignOut ends a remote auth session when one is configured.
	SignOut func(ctx context.Context) error
}

// ExecuteLogout clears the session marker and its console state.
// POST: always succeeds; a failing remote sign-out is logged and ignored
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) {
	if input.Token != "" {
		if deps.Sessions != nil {
			deps.Sessions.Delete(input.Token)
		}
		if deps.Consoles != nil {
			deps.Consoles.Release(input.Token)
		}
	}
	if deps.SignOut != nil {
		if err := deps.SignOut(ctx); err != nil {
			slog.Warn("remote_signout_failed", "error", err)
		}
	}
	slog.Info("auth_event", "event", "logout")
}
