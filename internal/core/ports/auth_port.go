package ports

import (
	"time"

	"github.com/voltride/rental-service/internal/core/domain"
)

type TokenService interface {
	IssueToken(payload *domain.TokenPayload, ttl time.Duration) (string, error)
	VerifyToken(token string) (*domain.TokenPayload, error)
}

// PasswordHasher is the one-way credential hashing collaborator. The core
// stores and compares verifiers only, never cleartext.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
