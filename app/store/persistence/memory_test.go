package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	slot := NewMemory()

	_, ok, err := slot.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, slot.Save([]byte("payload")))
	data, ok, err := slot.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, slot.Clear())
	_, ok, err = slot.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	slot := NewMemory()
	require.NoError(t, slot.Save([]byte("abc")))

	data, _, err := slot.Load()
	require.NoError(t, err)
	data[0] = 'x'

	again, _, err := slot.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again), "caller mutation must not leak into the slot")
}
