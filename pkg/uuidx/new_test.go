package uuidx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id := New()
	assert.Equal(t, uuid.Version(7), id.Version(), "UUID should be version 7")
	assert.Equal(t, uuid.RFC4122, id.Variant(), "UUID should have RFC4122 variant")

	assert.NotEqual(t, id, New(), "generated UUIDs should be unique")
}

func TestNewString(t *testing.T) {
	idStr := NewString()
	id, err := uuid.Parse(idStr)
	assert.NoError(t, err, "NewString should return a valid UUID string")
	assert.Equal(t, uuid.Version(7), id.Version(), "UUID should be version 7")

	assert.NotEqual(t, idStr, NewString(), "generated UUID strings should be unique")
}

func TestNewString_Ordering(t *testing.T) {
	// v7 ids embed a timestamp prefix, so ids minted in sequence sort in
	// mint order. Batch logs rely on this.
	a := NewString()
	b := NewString()
	assert.LessOrEqual(t, a[:8], b[:8])
}
