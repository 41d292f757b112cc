// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package core

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	assert.NotEqual(t, id1, id2)
	assert.Less(t, id1.String(), id2.String(), "ids must sort by creation order")
	assert.False(t, IsZeroID(id1))
}

func TestNewIDAt(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := NewIDAt(at)

	assert.Equal(t, at.UnixMilli(), ulid.Time(id.Time()).UnixMilli())
}

func TestParseID(t *testing.T) {
	original := NewID()
	parsed, err := ParseID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	_, err = ParseID("not-an-id")
	assert.Error(t, err)
}

func TestIsZeroID(t *testing.T) {
	assert.True(t, IsZeroID(ulid.ULID{}))
}
