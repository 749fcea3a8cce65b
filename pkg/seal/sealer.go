// Package seal provides the default report sealer: a keyed HMAC over the
// canonical report bytes plus the sealing metadata.
package seal

import (
	"context"
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/caselight-labs/leveler/pkg/crypto"
	"github.com/caselight-labs/leveler/pkg/report"
)

// HMACSealer seals reports with HMAC-SHA3-512 under a case-independent key.
type HMACSealer struct {
	key   []byte
	clock func() time.Time
}

// NewHMACSealer creates a sealer; the key must be non-empty.
func NewHMACSealer(key []byte) *HMACSealer {
	return &HMACSealer{key: key, clock: time.Now}
}

// WithClock overrides the seal timestamp clock for deterministic testing.
func (s *HMACSealer) WithClock(clock func() time.Time) *HMACSealer {
	s.clock = clock
	return s
}

// Seal implements orchestrator.Sealer.
func (s *HMACSealer) Seal(ctx context.Context, payload []byte, metadata map[string]string) (report.SealingMetadata, error) {
	if err := ctx.Err(); err != nil {
		return report.SealingMetadata{}, err
	}
	if len(s.key) == 0 {
		return report.SealingMetadata{}, fmt.Errorf("sealer key is empty")
	}
	if len(payload) == 0 {
		return report.SealingMetadata{}, fmt.Errorf("empty payload")
	}

	sum := sha3.Sum512(payload)
	reportHash := hex.EncodeToString(sum[:])

	metaBytes, err := crypto.CanonicalMarshal(metadata)
	if err != nil {
		return report.SealingMetadata{}, fmt.Errorf("seal metadata: %w", err)
	}
	mac := hmac.New(sha3.New512, s.key)
	mac.Write(payload)
	mac.Write(metaBytes)
	sealHash := hex.EncodeToString(mac.Sum(nil))

	ts := s.clock().UTC()
	return report.SealingMetadata{
		ReportHash:    reportHash,
		SealHash:      sealHash,
		Timestamp:     ts,
		WatermarkText: fmt.Sprintf("SEALED %s %s", ts.Format(time.RFC3339), sealHash[:16]),
	}, nil
}
