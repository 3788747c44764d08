package session

import (
	"context"
	"errors"
	"net/http"
)

const CookieName = "notespace_user_id"

var ErrUnauthenticated = errors.New("session required")

type ctxKey string

const ownerIDKey ctxKey = "owner_id"

func OwnerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ownerIDKey).(string)
	return v, ok && v != ""
}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// Cookies issues and reads the anonymous session cookie.
type Cookies struct {
	Tokens *Tokens
	Secure bool
}

// Issue sets a fresh session cookie on the response when the request has no
// valid one. The current request stays anonymous, as on a first visit.
func (c *Cookies) Issue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := c.owner(r); err != nil {
			if _, token, err := c.Tokens.Issue(); err == nil {
				http.SetCookie(w, c.cookie(token))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner rejects requests without a valid session cookie and stores
// the owner id in the request context.
func (c *Cookies) RequireOwner(unauthorized func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := c.owner(r)
			if err != nil {
				unauthorized(w, r, ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func (c *Cookies) owner(r *http.Request) (string, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", ErrUnauthenticated
	}
	return c.Tokens.Verify(ck.Value)
}

func (c *Cookies) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
