package orchestrator

import (
	"context"

	"github.com/caselight-labs/leveler/pkg/report"
)

// IntegrityResult is the platform integrity checker's verdict.
type IntegrityResult struct {
	IsAuthentic bool   `json:"is_authentic"`
	Hash        string `json:"hash"`
	Message     string `json:"message"`
}

// PlatformIntegrityChecker verifies the running binary before any evidence is
// touched. Called once per case; a non-authentic result is fatal.
type PlatformIntegrityChecker interface {
	Check(ctx context.Context, binaryPath string) (IntegrityResult, error)
}

// Sealer hashes and watermarks the serialized report. Called once per case
// after narration; any failure is fatal and the result is embedded verbatim.
type Sealer interface {
	Seal(ctx context.Context, payload []byte, metadata map[string]string) (report.SealingMetadata, error)
}
