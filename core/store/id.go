package store

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// NewID generates the canonical opaque identifier used for every entity.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// ValidID reports whether s parses as a canonical identifier. Malformed
// identifiers are rejected before any store access.
func ValidID(s string) bool {
	_, err := uuid.FromString(strings.TrimSpace(s))
	return err == nil
}
