package util

import (
	"crypto/sha256"
	"fmt"
)

// GenerateHash creates a SHA256 hash over the content type, text and binary
// payload of a clipboard value. A nil text and an empty text hash differently.
func GenerateHash(contentType string, text *string, binary []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(contentType))
	hasher.Write([]byte{0})
	if text != nil {
		hasher.Write([]byte{1})
		hasher.Write([]byte(*text))
	}
	hasher.Write([]byte{0})
	if binary != nil {
		hasher.Write([]byte{1})
		hasher.Write(binary)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
