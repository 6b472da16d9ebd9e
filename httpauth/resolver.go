package httpauth

import (
	"context"
	"errors"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Resolver turns inbound requests into session outcomes. The only two results
// are an authenticated *User or nil (anonymous); there is no partial state.
type Resolver struct {
	engine *goSession.Engine
	cfg    Config
}

// NewResolver wraps an engine with cookie transport settings.
func NewResolver(engine *goSession.Engine, cfg Config) (*Resolver, error) {
	if engine == nil {
		return nil, errors.New("engine required")
	}
	return &Resolver{engine: engine, cfg: cfg.withDefaults()}, nil
}

// Resolve runs the reauthentication algorithm for r, writing renewed cookies
// to w when a refresh rotation happens. A nil user with a nil error is a clean
// anonymous outcome; a non-nil error means the user store was unreachable and
// the caller should fail the request rather than downgrade it.
func (rv *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (*goSession.User, error) {
	ctx := r.Context()

	// Bearer mode stands alone: no cookie fallback, no rotation.
	if tok, ok := bearerToken(r.Header.Get("Authorization")); ok {
		user, err := rv.engine.Authenticate(ctx, tok)
		if err != nil {
			if isAnonymousOutcome(err) {
				return nil, nil
			}
			return nil, err
		}
		return user, nil
	}

	access, hasAccess := cookieValue(r, rv.cfg.AccessCookieName)
	refresh, hasRefresh := cookieValue(r, rv.cfg.RefreshCookieName)
	if !hasAccess && !hasRefresh {
		return nil, nil
	}

	if hasAccess {
		user, err := rv.engine.Authenticate(ctx, access)
		if err == nil {
			return user, nil
		}
		if !isAnonymousOutcome(err) {
			return nil, err
		}
	}

	if hasRefresh {
		user, tokens, err := rv.engine.Refresh(ctx, refresh)
		if err == nil {
			rv.WriteTokens(w, tokens)
			return user, nil
		}
		if !isAnonymousOutcome(err) {
			return nil, err
		}
	}

	return nil, nil
}

// WriteTokens sets both token cookies on the response, with max-age matching
// each token's TTL. Used on rotation and on sign-in/sign-up when the client
// opted into cookie transport.
func (rv *Resolver) WriteTokens(w http.ResponseWriter, tokens goSession.AuthTokens) {
	rv.setCookie(w, rv.cfg.AccessCookieName, tokens.AccessToken, rv.engine.AccessTTL())
	rv.setCookie(w, rv.cfg.RefreshCookieName, tokens.RefreshToken, rv.engine.RefreshTTL())
}

// ClearTokens expires both token cookies, for sign-out handlers.
func (rv *Resolver) ClearTokens(w http.ResponseWriter) {
	rv.expireCookie(w, rv.cfg.AccessCookieName)
	rv.expireCookie(w, rv.cfg.RefreshCookieName)
}

// isAnonymousOutcome reports whether err is a normal verification-shaped
// failure that resolves to anonymous rather than a fault. Throttled refreshes
// downgrade to anonymous too: the rotation is denied, the request is not
// broken.
func isAnonymousOutcome(err error) bool {
	return errors.Is(err, goSession.ErrTokenInvalid) ||
		errors.Is(err, goSession.ErrRefreshInvalid) ||
		errors.Is(err, goSession.ErrUserNotFound) ||
		errors.Is(err, goSession.ErrRefreshRateLimited)
}

type userContextKey struct{}

// UserFromContext returns the user resolved by [Resolver.Middleware], if any.
func UserFromContext(ctx context.Context) (*goSession.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*goSession.User)
	return user, ok && user != nil
}

// Middleware resolves the session for every request and stores the outcome in
// the context. Anonymous requests pass through; handlers decide what that
// means. Store unavailability becomes a 503.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := rv.Resolve(w, r)
		if err != nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests with 401. Chain it after
// [Resolver.Middleware].
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
