package api

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KirkDiggler/aionia-sheet/internal/auth"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/sessions"
)

type statusResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *auth.Identity `json:"user,omitempty"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// login starts the OAuth flow; the signed state is mirrored in a cookie to bind it to this browser
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeErrorMessage(w, http.StatusNotFound, "login is not configured")
		return
	}

	state, err := h.tokens.NewState(safeRedirect(r.URL.Query().Get("redirect")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.cookie(stateCookie, state, h.now().Add(auth.StateTTL)))
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeErrorMessage(w, http.StatusNotFound, "login is not configured")
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeErrorMessage(w, http.StatusUnauthorized, "authorization was denied: "+e)
		return
	}

	stateValue := q.Get("state")
	stored, err := r.Cookie(stateCookie)
	if err != nil || stateValue == "" || stored.Value != stateValue {
		writeErrorMessage(w, http.StatusBadRequest, "state mismatch")
		return
	}
	state, err := h.tokens.ParseState(stateValue)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, refreshToken, err := h.oauth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess := &sessions.Session{
		UserID:       id.UserID,
		Email:        id.Email,
		RefreshToken: refreshToken,
	}
	if err := h.sessions.Create(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}

	cookieValue, err := h.tokens.NewSession(sess.ID, sess.ExpiresAt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Printf("API: user %s signed in", id.UserID)
	http.SetCookie(w, h.expiredCookie(stateCookie))
	http.SetCookie(w, h.cookie(h.cookieName, cookieValue, sess.ExpiresAt))
	http.Redirect(w, r, state.Redirect, http.StatusFound)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	sess, err := h.currentSession(r)
	if err != nil {
		if sheeterr.IsUnauthenticated(err) || sheeterr.IsNotFound(err) {
			writeJSON(w, http.StatusOK, statusResponse{})
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Authenticated: true,
		User:          &auth.Identity{UserID: sess.UserID, Email: sess.Email},
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if h.loginEnabled() {
		if sess, err := h.currentSession(r); err == nil {
			if err := h.sessions.Delete(r.Context(), sess.ID); err != nil && !sheeterr.IsNotFound(err) {
				writeError(w, r, err)
				return
			}
		}
	}

	http.SetCookie(w, h.expiredCookie(h.cookieName))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// token mints a Drive access token from the session's refresh token
func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	if !h.loginEnabled() {
		writeErrorMessage(w, http.StatusNotFound, "login is not configured")
		return
	}

	sess, err := h.currentSession(r)
	if err != nil {
		if sheeterr.IsNotFound(err) {
			err = sheeterr.Unauthenticated("session has ended")
		}
		writeError(w, r, err)
		return
	}

	tok, err := h.oauth.AccessToken(r.Context(), sess.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok.AccessToken, ExpiresAt: tok.Expiry})
}

func (h *Handler) currentSession(r *http.Request) (*sessions.Session, error) {
	c, err := r.Cookie(h.cookieName)
	if err != nil || c.Value == "" {
		return nil, sheeterr.Unauthenticated("no session cookie")
	}
	sessionID, err := h.tokens.ParseSession(c.Value)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(r.Context(), sessionID)
}

func (h *Handler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) expiredCookie(name string) *http.Cookie {
	c := h.cookie(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}

// safeRedirect keeps post-login redirects on this site
func safeRedirect(redirect string) string {
	if redirect == "" || !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") || strings.HasPrefix(redirect, `/\`) {
		return "/"
	}
	u, err := url.Parse(redirect)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return redirect
}
