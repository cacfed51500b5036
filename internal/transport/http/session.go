package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"sat-practice-service/internal/app"
	"sat-practice-service/internal/domain"
)

// sessionCookies ties the signed cookie to the server-side session record.
// The cookie carries only the session token.
type sessionCookies struct {
	name   string
	secure bool
	ttl    time.Duration
	codec  *securecookie.SecureCookie
	store  app.SessionRepository
}

func newSessionCookies(name string, secret []byte, secure bool, ttl time.Duration, store app.SessionRepository) *sessionCookies {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(ttl / time.Second))
	return &sessionCookies{name: name, secure: secure, ttl: ttl, codec: codec, store: store}
}

// resolve returns the session behind the request cookie, or domain.ErrSessionNotFound.
func (c *sessionCookies) resolve(r *http.Request) (domain.Session, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	var token string
	if err := c.codec.Decode(c.name, cookie.Value, &token); err != nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return c.store.Get(r.Context(), token)
}

// issue starts a new session for accountID, ending any session the request already had.
func (c *sessionCookies) issue(w http.ResponseWriter, r *http.Request, accountID int64) error {
	if old, err := c.resolve(r); err == nil {
		_ = c.store.Delete(r.Context(), old.Token)
	}
	session, err := c.store.Create(r.Context(), accountID)
	if err != nil {
		return err
	}
	value, err := c.codec.Encode(c.name, session.Token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *sessionCookies) destroy(w http.ResponseWriter, r *http.Request) error {
	var err error
	if session, resolveErr := c.resolve(r); resolveErr == nil {
		err = c.store.Delete(r.Context(), session.Token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

func (c *sessionCookies) save(ctx context.Context, session domain.Session) error {
	return c.store.Save(ctx, session)
}

// sessionHandler is a handler that runs only with an authenticated session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, session *domain.Session)

// requireSession redirects callers without a live session to the login page.
func (h *Handler) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.cookies.resolve(r)
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		next(w, r, &session)
	}
}
