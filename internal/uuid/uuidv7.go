// Package uuid generates identifiers for persisted records.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a new time-ordered UUIDv7, suitable for primary keys.
// It falls back to a random v4 UUID if the v7 generator fails.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalizes a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
