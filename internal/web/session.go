package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	stateCookieName = "oauth_state"
	stateTTL        = 5 * time.Minute
)

var (
	errMissingState  = errors.New("missing state cookie")
	errStateMismatch = errors.New("state mismatch")
)

// newState creates a random state string for OAuth.
func newState() string {
	return uuid.NewString()
}

// setStateCookie stores state for validation on callback.
func setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})
}

// clearStateCookie removes the state cookie from the response.
func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// verifyState checks the state query parameter against the cookie.
func verifyState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return errMissingState
	}
	if r.URL.Query().Get("state") != cookie.Value {
		return errStateMismatch
	}
	return nil
}
