// Package authseam is the "cryptographic authentication design beyond a
// token-verify seam" spec.md's Non-goals exclude from the core's
// responsibility: it only encodes, signs, and verifies a short-lived JWT
// against the persisted Config's user/password, grounded in
// original_source's jwt.rs (generate_jwt/verify_jwt against an HMAC secret
// with an expiry claim) and the teacher's golang-jwt/jwt/v5 usage
// (internal/api/handlers/pin_auth.go's generateJWTToken/verifyJWTToken).
package authseam

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// Claims mirrors the original source's {sub, exp} shape: a subject (the
// authenticated username) and a standard expiry.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// Seam issues and verifies session tokens against a fixed HMAC secret.
type Seam struct {
	secret []byte
}

// New constructs a Seam from a raw secret; callers load or generate the
// secret at the daemon's process-config layer (see cmd/server).
func New(secret []byte) *Seam {
	return &Seam{secret: secret}
}

// Issue mints a token for username valid for sessionTimeout, the
// persisted Config's AuthSessionTimeoutSecs duration.
func (s *Seam) Issue(username string, sessionTimeout time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(sessionTimeout)
	claims := Claims{
		Subject: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, daemonerrors.Wrap(daemonerrors.Config, "sign session token", err)
	}
	return signed, expiresAt, nil
}

// Verify checks tokenString's signature and expiry, returning its subject.
func (s *Seam) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", daemonerrors.InvalidArgumentf("invalid or expired session token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return "", daemonerrors.InvalidArgumentf("malformed session token claims")
	}
	return claims.Subject, nil
}
