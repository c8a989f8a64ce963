package session

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName identifies the shopper session cookie.
	CookieName = "shopfront_session"

	// TTL matches the storefront's 30-day shopper session lifetime.
	TTL = 30 * 24 * time.Hour
)

type ctxKey string

const tokenKey ctxKey = "session_token"

// Token returns the session token for the request, issuing a fresh one and
// setting the cookie when none is present. It never fails: token generation
// prefers a V4 UUID from the platform's secure randomness and falls back to a
// time-seeded pseudo-random value if that source is unavailable, trading
// token quality for availability.
func Token(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	token := newToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func newToken() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("fallback-%d-%08x", time.Now().UnixNano(), rand.Uint32())
	}
	return id.String()
}

// Middleware ensures every request carries a session token and exposes it via
// FromContext.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := Token(w, r)
		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(tokenKey).(string)
	return v, ok
}
