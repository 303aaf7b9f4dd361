package domain

import (
	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for store-assigned identifiers.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RequireUUID rejects identifiers that are not UUID-shaped. It is applied
// where the identifier is always store-generated.
func RequireUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrValidation("malformed identifier %q: expected a UUID", id)
	}
	return nil
}
