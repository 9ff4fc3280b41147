package chat

import (
	"strings"

	"github.com/google/uuid"
)

// TempPrefix marks client-issued ids that the backend has never seen.
const TempPrefix = "temp-"

// NewTempID returns a fresh temporary message id.
func NewTempID() string {
	return TempPrefix + uuid.NewString()
}

// IsTemp reports whether id was issued by the client.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}
