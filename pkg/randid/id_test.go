package randid

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"zero", 0},
		{"negative", -3},
		{"short", 1},
		{"batch id", 6},
		{"long", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Generate(tt.length)
			assert.Len(t, id, max(tt.length, 0))
			for _, c := range id {
				assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q", c)
			}
		})
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 500 {
		id := Generate(8)
		require.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestGenerate_RejectsBiasedBytes(t *testing.T) {
	// 255 and 252 are above the cutoff; 0, 1 and 37 map to a, b and b.
	src := bytes.NewReader([]byte{255, 0, 252, 1, 37, 0, 0, 0, 0, 0})

	id, err := generate(src, 3)
	require.NoError(t, err)
	assert.Equal(t, "abb", id)
}

func TestGenerate_ReaderError(t *testing.T) {
	_, err := generate(iotest.ErrReader(errors.New("boom")), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
