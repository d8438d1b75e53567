package status

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// Authenticator validates an inbound subscription request and returns the
// workflow run id the caller is authorised to watch. Grounded on
// internal/infrastructure/websocket/auth.go's Authenticator interface.
type Authenticator interface {
	Authenticate(r *http.Request) (runID string, err error)
}

// TokenClaims is the short-lived-token payload spec §4.6 calls for.
type TokenClaims struct {
	RunID string `json:"runId"`
	jwt.RegisteredClaims
}

// JWTAuth authenticates subscribers via a short-lived HMAC-signed token,
// passed as a Bearer header or a ?token= query parameter. Grounded on
// internal/infrastructure/websocket/auth.go's JWTAuth.
type JWTAuth struct {
	secretKey []byte
}

// NewJWTAuth builds a JWTAuth using secretKey to verify tokens.
func NewJWTAuth(secretKey []byte) *JWTAuth {
	return &JWTAuth{secretKey: secretKey}
}

func (a *JWTAuth) Authenticate(r *http.Request) (string, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return "", ErrUnauthorized
	}
	return a.validate(tokenStr)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (a *JWTAuth) validate(tokenStr string) (string, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return a.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	if claims.RunID == "" {
		return "", ErrUnauthorized
	}
	return claims.RunID, nil
}

// IssueToken mints a short-lived subscription token scoped to one workflow
// run. ttl is typically on the order of a minute, matching the spec's
// "short-lived token for that channel".
func (a *JWTAuth) IssueToken(runID string, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		RunID: runID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}
