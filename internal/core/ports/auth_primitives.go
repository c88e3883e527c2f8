package ports

import (
	"context"
	"time"
)

// TokenCodec issues and verifies stateless bearer tokens. Validity is fully
// determined by the token's signed contents and the supplied time.
type TokenCodec interface {
	Issue(subjectID int64, now time.Time) (string, error)
	Decode(token string, now time.Time) (int64, error)
}

// PasswordHasher performs slow, salted one-way hashing. Verify reports false
// for a malformed stored hash rather than failing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// LoginLimiter throttles repeated login attempts for a key (normalized
// email). Allow records an attempt and reports whether it may proceed; Reset
// clears the counter after a successful login.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
