package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akopytov/inventory-core/internal/auth"
)

// Cookie and header names. The session cookie carries the signed JWT; the
// CSRF cookie carries the double-submit token the client must echo back in
// the header.
const (
	sessionCookieName = "jwt"
	csrfCookieName    = "_csrfToken"
	csrfHeaderName    = "X-CSRF-Token"
)

// loginRequest is the request body for POST /api/login.
type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /api/login.
type loginResponse struct {
	User auth.Identity `json:"user"`
}

// handleLogin authenticates credentials and establishes a session.
//
// On success the session and CSRF cookies are set and the body carries the
// account identity. Credential failures are a uniform 401 regardless of
// whether the name or the password was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" || req.Password == "" {
		writeBadRequest(w, "name and password are required")
		return
	}

	result, err := s.sessions.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	s.setSessionCookies(w, result.SessionToken, result.CSRFToken)

	writeJSON(w, http.StatusOK, loginResponse{
		User: auth.Identity{
			ID:   result.User.ID,
			Name: result.User.Name,
			Role: result.User.Role,
		},
	})
}

// handleLogout revokes the caller's session and clears both cookies.
//
// The cookies are cleared even if revocation of the stored token finds
// nothing to clear; logging out twice is not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Error("logout failed", "error", err)
			s.clearSessionCookies(w)
			writeInternalError(w, "internal server error")
			return
		}
	}

	s.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// handleProtected confirms the session is live and returns the caller's
// identity. The frontend polls it to decide whether to show the app shell
// or the login form.
func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		// The gate always runs first on this route.
		writeInternalError(w, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: *identity})
}

// setSessionCookies sets the session and CSRF cookies for a new session.
//
// The session cookie is HttpOnly and deliberately shorter-lived on the
// client than its signed expiry. The CSRF cookie must stay readable by
// the frontend script, so no HttpOnly.
func (s *Server) setSessionCookies(w http.ResponseWriter, sessionToken, csrfToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionCookieMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(s.cfg.CSRFCookieMaxAge().Seconds()),
		HttpOnly: false,
		Secure:   s.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both cookies on the client.
func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
