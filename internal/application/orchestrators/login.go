package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"chitfund/internal/domain/account"
)

// LoginFailedMessage is shown for every rejected login.
const LoginFailedMessage = "Invalid credentials or role selected. Try again."

// Landing pages per role.
const (
	AdminHome  = "/admin"
	MemberHome = "/member"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and role mismatches alike.
var ErrInvalidCredentials = account.ErrInvalidCredentials

// Authenticator checks a username, password and selected role.
type Authenticator interface {
	Authenticate(username, password, role string) (account.Credential, error)
}

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	RecordLogin(result string)
}

// LoginDelay simulates the processing pause shown after a successful login.
// The wait is drawn uniformly from [Min, Max].
type LoginDelay struct {
	Min, Max time.Duration
	// Rand returns a value in [0, 1); nil uses math/rand/v2.
	Rand func() float64
}

// Duration draws one delay.
func (d LoginDelay) Duration() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	r := d.Rand
	if r == nil {
		r = rand.Float64
	}
	return d.Min + time.Duration(r()*float64(d.Max-d.Min))
}

// Wait blocks for one drawn delay or until ctx is done.
func (d LoginDelay) Wait(ctx context.Context) error {
	wait := d.Duration()
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
	Role     string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Username string
	Role     string
	Redirect string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Authenticator Authenticator
	Delay         LoginDelay
	Recorder      LoginRecorder
}

// ExecuteLogin validates credentials, waits out the processing delay and
// picks the landing page for the role.
// PRE: input comes from the login form
// POST: Returns ErrInvalidCredentials on any mismatch; ctx errors when the wait is cancelled
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	cred, err := deps.Authenticator.Authenticate(input.Username, input.Password, input.Role)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "role", input.Role)
		recordLogin(deps.Recorder, "failed")
		return LoginResult{}, ErrInvalidCredentials
	}

	start := time.Now()
	if err := deps.Delay.Wait(ctx); err != nil {
		slog.Info("auth_event", "event", "login_abandoned", "username", cred.Username)
		recordLogin(deps.Recorder, "abandoned")
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "username", cred.Username, "role", cred.Role,
		"delay_ms", time.Since(start).Milliseconds())
	recordLogin(deps.Recorder, "success")

	redirect := MemberHome
	if cred.IsAdmin() {
		redirect = AdminHome
	}
	return LoginResult{Username: cred.Username, Role: cred.Role, Redirect: redirect}, nil
}

func recordLogin(r LoginRecorder, result string) {
	if r != nil {
		r.RecordLogin(result)
	}
}

// IsLoginCancelled reports whether err came from an abandoned delay.
func IsLoginCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
