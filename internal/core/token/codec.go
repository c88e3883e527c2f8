// Package token implements the stateless session token codec. A token is an
// HS256-signed JWT carrying {sub, iat, exp}; validity is determined entirely
// by the signature and the time window, with no server-side session record.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("invalid token")
var ErrTokenExpired = errors.New("expired token")

const defaultTTL = time.Hour

// Codec signs and verifies session tokens with a process-wide secret loaded
// once at startup. Rotating the secret invalidates all outstanding tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec. A non-positive ttl falls back to one hour.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token for the given subject id, valid from now until
// now+ttl. Two tokens for the same subject are independent.
func (c *Codec) Issue(subjectID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the token under the current secret and returns the subject
// id. The signature is checked before any claim is trusted: a tampered token
// reports ErrTokenInvalid even when its expiry also elapsed.
func (c *Codec) Decode(tokenString string, now time.Time) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, ErrTokenInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		default:
			return 0, ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}
