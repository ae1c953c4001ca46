package domain

import (
	"github.com/google/uuid"
)

// TokenPayload is the authenticated caller identity carried by a verified
// token. Core operations trust this pair, never a client-supplied role.
type TokenPayload struct {
	UserID uuid.UUID
	Role   UserRole
}
