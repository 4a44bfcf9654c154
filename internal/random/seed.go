// Package random draws crypto-quality seeds for game definitions whose
// shuffles must be replay-safe: the seed is generated once, then every
// deal derives deterministically from it.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed draws a fresh 64-bit seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
