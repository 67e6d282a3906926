package uuidx

import "github.com/google/uuid"

// New generates a new UUID using the version 7 format and returns it.
// v7 ids are time-ordered, which keeps batch ids sortable in logs and
// in persisted result sets. It panics if the UUID generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString generates a new v7 UUID and returns it as a string.
func NewString() string {
	return New().String()
}
