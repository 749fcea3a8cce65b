// Package crypto provides deterministic hashing for Leveler artifacts:
// raw content digests for evidence bytes and canonical JSON digests for
// structured records that participate in the custody chain or the seal.
package crypto

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Hasher produces a hex digest of raw bytes. The evidence ingestor and the
// default sealer both consume this interface so a case run can pin a single
// digest algorithm end to end.
type Hasher interface {
	Sum(data []byte) string
}

// SHA3Hasher is the default Hasher, producing SHA3-512 hex digests.
type SHA3Hasher struct{}

// NewSHA3Hasher creates the default 512-bit hasher.
func NewSHA3Hasher() *SHA3Hasher {
	return &SHA3Hasher{}
}

// Sum returns the SHA3-512 hex digest of data.
func (h *SHA3Hasher) Sum(data []byte) string {
	sum := sha3.Sum512(data)
	return hex.EncodeToString(sum[:])
}

// CanonicalHash returns the SHA3-512 hex digest of the canonical JSON
// representation of v. Two values that marshal to the same logical JSON
// document always produce the same digest, regardless of map ordering.
func CanonicalHash(v interface{}) (string, error) {
	b, err := CanonicalMarshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical serialization failed: %w", err)
	}
	sum := sha3.Sum512(b)
	return hex.EncodeToString(sum[:]), nil
}
