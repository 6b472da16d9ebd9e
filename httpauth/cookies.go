package httpauth

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultAccessCookieName is the cookie carrying the access token.
	DefaultAccessCookieName = "access-token"
	// DefaultRefreshCookieName is the cookie carrying the refresh token.
	DefaultRefreshCookieName = "refresh-token"
)

// Config controls cookie attributes. The zero value is completed by
// [DefaultConfig]-equivalent fallbacks inside [NewResolver].
type Config struct {
	AccessCookieName  string
	RefreshCookieName string
	CookiePath        string
	CookieDomain      string
	CookieSecure      bool
	CookieSameSite    http.SameSite
}

// DefaultConfig returns the baseline cookie setup: default names, path "/",
// SameSite=Lax. Secure is off so local development works; production hosts
// should turn it on.
func DefaultConfig() Config {
	return Config{
		AccessCookieName:  DefaultAccessCookieName,
		RefreshCookieName: DefaultRefreshCookieName,
		CookiePath:        "/",
		CookieSameSite:    http.SameSiteLaxMode,
	}
}

func (c Config) withDefaults() Config {
	if c.AccessCookieName == "" {
		c.AccessCookieName = DefaultAccessCookieName
	}
	if c.RefreshCookieName == "" {
		c.RefreshCookieName = DefaultRefreshCookieName
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	if c.CookieSameSite == 0 {
		c.CookieSameSite = http.SameSiteLaxMode
	}
	return c
}

func (rv *Resolver) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     rv.cfg.CookiePath,
		Domain:   rv.cfg.CookieDomain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   rv.cfg.CookieSecure,
		SameSite: rv.cfg.CookieSameSite,
	})
}

func (rv *Resolver) expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     rv.cfg.CookiePath,
		Domain:   rv.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rv.cfg.CookieSecure,
		SameSite: rv.cfg.CookieSameSite,
	})
}

func cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}
