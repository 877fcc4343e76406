package tokens

import (
	"net/http"
	"net/url"
	"time"

	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/http/html"
)

const (
	// session cookie stores the session token
	SessionCookie        = "session"
	defaultSessionExpiry = 24 * time.Hour

	// startSessionPath exchanges a session token for a session cookie.
	startSessionPath = "/sessions/start"
)

// NewSessionToken mints a session token for the named user.
func (a *Service) NewSessionToken(username string, expiry time.Time) ([]byte, error) {
	return NewToken(NewTokenOptions{
		key:     a.key,
		Kind:    userSessionKind,
		Subject: username,
		Expiry:  &expiry,
	})
}

// SessionURL returns the link that starts a session for the holder of the
// token.
func SessionURL(base string, token []byte) string {
	return base + startSessionPath + "?" + url.Values{"token": {string(token)}}.Encode()
}

// StartSession sets a session cookie for the named user and sends them to the
// home page.
func (a *Service) StartSession(w http.ResponseWriter, r *http.Request, username string) error {
	expiry := internal.CurrentTimestamp().Add(defaultSessionExpiry)
	token, err := a.NewSessionToken(username, expiry)
	if err != nil {
		return err
	}
	// Set cookie to expire at same time as token
	html.SetCookie(w, SessionCookie, string(token), &expiry)
	http.Redirect(w, r, "/", http.StatusFound)

	a.V(2).Info("started session", "username", username)

	return nil
}

func (a *Service) startSessionHandler(w http.ResponseWriter, r *http.Request) {
	username, err := parseToken(a.key, userSessionKind, []byte(r.URL.Query().Get("token")))
	if err != nil {
		html.Error(r, w, internal.ErrUnauthorized)
		return
	}
	if err := a.StartSession(w, r, username); err != nil {
		a.Error(err, "starting session")
		html.Error(r, w, err)
		return
	}
}
