package hmsearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		wantErr  bool
	}{
		{"Lowercase", "deadbeef", []byte{0xDE, 0xAD, 0xBE, 0xEF}, false},
		{"Uppercase", "DEADBEEF", []byte{0xDE, 0xAD, 0xBE, 0xEF}, false},
		{"Empty", "", []byte{}, false},
		{"OddLength", "abc", nil, true},
		{"NotHex", "zz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := ParseHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, hash)
		})
	}
}

func TestFormatHexRoundTrip(t *testing.T) {
	for _, s := range []string{"00", "ff", "deadbeefcafebabe", "0123456789abcdef"} {
		hash, err := ParseHex(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatHex(hash))
	}

	// Uppercase input normalizes to lowercase on the way back out.
	hash, err := ParseHex("DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower("DEADBEEF"), FormatHex(hash))
}
