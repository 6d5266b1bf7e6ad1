package web

import (
	"net/http"

	"chitfund/internal/adapters/http/middleware"
	"chitfund/internal/application/orchestrators"
	"chitfund/internal/domain/account"
)

type loginPage struct {
	Error    string
	Username string
	Role     string
	Roles    []string
}

func homeFor(sess middleware.Session) string {
	if sess.IsAdmin() {
		return orchestrators.AdminHome
	}
	return orchestrators.MemberHome
}

// handleRoot sends visitors to their landing page.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.LoginURL(false), http.StatusSeeOther)
}

// handleLoginPage handles GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
		return
	}
	page := loginPage{Role: account.RoleAdmin, Roles: account.ValidRoles}
	if r.URL.Query().Get("denied") != "" {
		page.Error = middleware.AccessDeniedMessage
	}
	s.render(w, r, http.StatusOK, "login.html", page)
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	deps := orchestrators.LoginDeps{
		Authenticator: s.deps.Authenticator,
		Delay:         s.deps.LoginDelay,
	}
	if s.deps.Metrics != nil {
		deps.Recorder = s.deps.Metrics
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		if orchestrators.IsLoginCancelled(err) {
			// The client is gone; nobody reads the response.
			return
		}
		s.render(w, r, http.StatusUnauthorized, "login.html", loginPage{
			Error:    orchestrators.LoginFailedMessage,
			Username: input.Username,
			Role:     input.Role,
			Roles:    account.ValidRoles,
		})
		return
	}

	token, err := s.deps.Sessions.Create(result.Username, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

// handleLogout handles POST /logout. It always lands on the login page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetTokenFromContext(r.Context())
	if !ok {
		if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
			token = cookie.Value
		}
	}
	orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Token: token}, orchestrators.LogoutDeps{
		Sessions: s.deps.Sessions,
		Consoles: s.deps.Consoles,
		SignOut:  s.deps.SignOut,
	})
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, middleware.LoginURL(false), http.StatusSeeOther)
}

// handleMemberPage handles GET /member, the landing page for the user role.
func (s *Server) handleMemberPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL(false), http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "member.html", map[string]any{
		"Username": sess.Username,
		"IsAdmin":  sess.IsAdmin(),
	})
}
