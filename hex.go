package hmsearch

import (
	"encoding/hex"
	"fmt"
)

// ParseHex decodes a lowercase or uppercase hex string into hash bytes.
func ParseHex(s string) ([]byte, error) {
	hash, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hmsearch: parse hex hash: %w", err)
	}
	return hash, nil
}

// FormatHex encodes hash bytes as a lowercase hex string, two digits per
// byte.
func FormatHex(hash []byte) string {
	return hex.EncodeToString(hash)
}
