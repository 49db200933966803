package bits

import (
	mathbits "math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOneBits(t *testing.T) {
	// The table must agree with the hardware popcount for every byte.
	for b := 0; b < 256; b++ {
		assert.Equal(t, mathbits.OnesCount8(uint8(b)), OneBits(byte(b)), "byte %#02x", b)
	}
}

func TestHamming(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []byte
		expected int
	}{
		{"Identical", []byte{0xAA, 0x55}, []byte{0xAA, 0x55}, 0},
		{"AllBits", []byte{0xFF, 0x00}, []byte{0x00, 0xFF}, 16},
		{"Partial", []byte{0b11110000}, []byte{0b11111111}, 4},
		{"SingleBit", []byte{0x00, 0x01}, []byte{0x00, 0x00}, 1},
		{"Empty", []byte{}, []byte{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hamming(tt.a, tt.b))
			assert.Equal(t, tt.expected, Hamming(tt.b, tt.a))
		})
	}
}
