package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authgate/authgate/internal/models"
	"github.com/authgate/authgate/pkg/logger"
)

// SessionLifetime is the fixed validity window of issued tokens. The signed
// token is the only record of an active session; there is nothing to revoke
// or refresh server-side.
const SessionLifetime = 30 * 24 * time.Hour

// SessionClaims are the session facts embedded verbatim in a signed token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// DeriveClaims builds the claims for a user at the given issuance time.
// Pure: same user and time always yield the same claims.
func DeriveClaims(u *models.User, now time.Time) SessionClaims {
	return SessionClaims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
		},
	}
}

// Codec signs and verifies session tokens with a symmetric key established at
// startup and never rotated within a process lifetime.
type Codec struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c
}

// Issue signs session claims for the user, valid for SessionLifetime.
func (c *Codec) Issue(u *models.User) (string, error) {
	claims := DeriveClaims(u, c.now())
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature, structure and expiry against the codec's current
// time. Malformed, mis-signed and expired tokens all collapse to nil so
// callers treat them uniformly; the cause is only logged.
func (c *Codec) Verify(raw string) *SessionClaims {
	var claims SessionClaims
	tok, err := c.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		logger.Debugf("token verify failed: %v", err)
		return nil
	}
	return &claims
}
