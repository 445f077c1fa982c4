package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersOrder(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/html")
	h.Set("Date", "Wed, 05 Mar 2025 22:04:41 GMT")
	h.Set("Content-Length", "11")

	fields := h.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "Content-Type", fields[0].Key)
	assert.Equal(t, "Date", fields[1].Key)
	assert.Equal(t, "Content-Length", fields[2].Key)

	// Test: Set on an existing key keeps its position
	h.Set("content-type", "text/plain")
	fields = h.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "Content-Type", fields[0].Key)
	assert.Equal(t, "text/plain", fields[0].Value)
}

func TestHeadersGet(t *testing.T) {
	// Test: Case insensitive lookup
	h := NewHeaders()
	h.Set("Content-Length", "42")
	val, ok := h.Get("CONTENT-LENGTH")
	assert.True(t, ok)
	assert.Equal(t, "42", val)

	// Test: Get on non-existent header
	val, ok = h.Get("non-existent")
	assert.False(t, ok)
	assert.Equal(t, "", val)

	// Test: Empty header value (allowed)
	h.Set("X-Empty", "")
	val, ok = h.Get("x-empty")
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestHeadersAddSetDel(t *testing.T) {
	// Test: Add keeps duplicates
	h := NewHeaders()
	h.Add("X-Custom", "value1")
	h.Add("X-Other", "other")
	h.Add("x-custom", "value2")
	assert.Equal(t, []string{"value1", "value2"}, h.GetAll("X-CUSTOM"))

	// Test: Get returns first value for duplicate headers
	val, _ := h.Get("x-custom")
	assert.Equal(t, "value1", val)

	// Test: Set collapses duplicates into the first slot
	h.Set("X-Custom", "new-value")
	assert.Equal(t, []string{"new-value"}, h.GetAll("x-custom"))
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "X-Custom", h.Fields()[0].Key)

	// Test: Del removes every value
	h.Del("x-custom")
	assert.Equal(t, 1, h.Len())
	_, ok := h.Get("x-custom")
	assert.False(t, ok)

	// Test: Reset empties the list
	h.Reset()
	assert.Equal(t, 0, h.Len())
}
