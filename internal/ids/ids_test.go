package ids

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortableAndUnique(t *testing.T) {
	seen := map[string]bool{}
	prev := ""
	for i := 0; i < 1000; i++ {
		id := New()
		require.Len(t, id, 26)
		assert.False(t, seen[id])
		assert.True(t, id > prev, "ids must increase monotonically")
		seen[id] = true
		prev = id
	}
}

func TestInvoiceNumber(t *testing.T) {
	n := InvoiceNumber()
	require.True(t, strings.HasPrefix(n, "INV-"))
	_, err := ulid.Parse(strings.TrimPrefix(n, "INV-"))
	assert.NoError(t, err)
}
