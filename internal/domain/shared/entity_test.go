package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.False(t, e.GetCreatedAt().IsZero())
	assert.Equal(t, e.GetCreatedAt(), e.GetUpdatedAt())
}

func TestBaseEntityTouch(t *testing.T) {
	e := NewBaseEntity()
	before := e.GetUpdatedAt()

	time.Sleep(time.Millisecond)
	e.Touch()

	assert.True(t, e.GetUpdatedAt().After(before))
	assert.Equal(t, before, e.GetCreatedAt())
}
