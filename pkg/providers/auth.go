package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/errors"
)

var newAuthCode = errors.WithPrefix("AUTHSCHEME")

var (
	ErrTokenMalformed = newAuthCode().New("token is malformed")
	ErrTokenSignature = newAuthCode().New("token signature does not verify")
	ErrTokenExpired   = newAuthCode().New("token expired at {{.expired}}")
	ErrTokenClaims    = newAuthCode().New("token claims rejected: {{.reason}}")
)

// Claims is what a verified token asserts about its bearer.
type Claims struct {
	Subject   string    `json:"sub"`
	Issuer    string    `json:"iss,omitempty"`
	Audience  string    `json:"aud,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	Scopes    []string  `json:"scopes,omitempty"`
}

// Anonymous reports whether the claims belong to an unauthenticated
// bearer, the case when the scheme is disabled.
func (c *Claims) Anonymous() bool { return c.Subject == "" }

func (c *Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// AuthScheme issues and verifies HMAC-SHA256 signed tokens. A disabled
// scheme verifies everything to anonymous claims, so handlers can rely on
// claims being present either way.
type AuthScheme struct {
	enabled  bool
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewAuthScheme(s container.AuthSettings) *AuthScheme {
	return &AuthScheme{
		enabled:  s.Enabled,
		secret:   []byte(s.Secret),
		issuer:   s.Issuer,
		audience: s.Audience,
		ttl:      s.TTL,
	}
}

func (a *AuthScheme) Enabled() bool { return a.enabled }

func (a *AuthScheme) Issue(subject string, scopes ...string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Subject:   subject,
		Issuer:    a.issuer,
		Audience:  a.audience,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.ttl),
		Scopes:    scopes,
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + a.sign(body), nil
}

func (a *AuthScheme) Verify(token string) (*Claims, error) {
	if !a.enabled {
		return &Claims{}, nil
	}

	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" {
		return nil, ErrTokenMalformed
	}
	if !hmac.Equal([]byte(a.sign(body)), []byte(sig)) {
		return nil, ErrTokenSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrTokenMalformed.WithCause(err)
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, ErrTokenMalformed.WithCause(err)
	}

	if time.Now().After(claims.ExpiresAt) {
		return nil, ErrTokenExpired.WithDetail("expired", claims.ExpiresAt)
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return nil, ErrTokenClaims.WithDetail("reason", "issuer mismatch")
	}
	if a.audience != "" && claims.Audience != a.audience {
		return nil, ErrTokenClaims.WithDetail("reason", "audience mismatch")
	}
	return claims, nil
}

func (a *AuthScheme) sign(body string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

type claimsKey struct{}

// ClaimsFrom returns the claims the auth middleware attached, or nil on an
// unauthenticated request path.
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// Middleware authenticates bearer tokens and attaches claims to the
// request context. With the scheme disabled every request passes through
// with anonymous claims.
func (a *AuthScheme) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if a.enabled && token == "" {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := a.Verify(token)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": reason})
}

// AuthProvider contributes the scheme and, when enabled, its middleware as
// container resources.
func AuthProvider() container.Provider {
	return container.NamedProvider("auth", func(c *container.Container) (container.ProviderResult, error) {
		scheme := NewAuthScheme(c.Settings().Auth)
		if !scheme.Enabled() {
			return container.Resources(scheme), nil
		}
		var mw func(http.Handler) http.Handler = scheme.Middleware
		return container.Resources(scheme, mw), nil
	})
}
