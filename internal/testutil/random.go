package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomSlug returns prefix plus a random hex suffix, for test fixtures
// that need unique names.
func RandomSlug(prefix string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(b))
}

// RandomEmail returns a unique email address for test registrations.
func RandomEmail(prefix string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s-%s@example.com", prefix, hex.EncodeToString(b))
}
