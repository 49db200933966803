package hmsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed
	// database handle.
	ErrClosed = errors.New("hmsearch: database is closed")

	// ErrReadOnly is returned by Insert on a handle opened with
	// ModeReadOnly.
	ErrReadOnly = errors.New("hmsearch: database is opened read-only")

	// ErrConfigMissing is returned by Open when the stored hash-bits or
	// max-error records are absent or unparseable. The database is
	// treated as corrupted.
	ErrConfigMissing = errors.New("hmsearch: config records missing or unparseable")
)

// ErrInvalidConfig indicates a (hash bits, max error) pair outside the
// supported range. Returned by NewParams and Init; Open wraps it together
// with ErrConfigMissing when the stored records are out of range.
type ErrInvalidConfig struct {
	HashBits int
	MaxError int
	Reason   string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("hmsearch: invalid config (hash_bits=%d, max_error=%d): %s",
		e.HashBits, e.MaxError, e.Reason)
}

// ErrHashLength indicates a hash or query argument whose length does not
// match the configured hash width.
type ErrHashLength struct {
	Expected int
	Actual   int
}

func (e *ErrHashLength) Error() string {
	return fmt.Sprintf("hmsearch: incorrect hash length: expected %d bytes, got %d",
		e.Expected, e.Actual)
}
