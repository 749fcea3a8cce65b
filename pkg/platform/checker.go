// Package platform provides the default platform integrity checker: it
// digests the running binary and compares it against a pinned release hash.
package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/caselight-labs/leveler/pkg/crypto"
	"github.com/caselight-labs/leveler/pkg/orchestrator"
)

// Checker verifies a binary against an expected content digest. With no
// expected digest configured it runs in self-report mode: the verdict is
// authentic and carries the computed hash for out-of-band comparison.
type Checker struct {
	expectedHash string
	hasher       crypto.Hasher
}

// NewChecker creates a checker pinned to expectedHash; empty means
// self-report mode.
func NewChecker(expectedHash string, hasher crypto.Hasher) *Checker {
	return &Checker{expectedHash: expectedHash, hasher: hasher}
}

// Check implements orchestrator.PlatformIntegrityChecker.
func (c *Checker) Check(ctx context.Context, binaryPath string) (orchestrator.IntegrityResult, error) {
	if err := ctx.Err(); err != nil {
		return orchestrator.IntegrityResult{}, err
	}
	if binaryPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return orchestrator.IntegrityResult{}, fmt.Errorf("resolve running binary: %w", err)
		}
		binaryPath = exe
	}

	data, err := os.ReadFile(binaryPath)
	if err != nil {
		return orchestrator.IntegrityResult{}, fmt.Errorf("read binary %q: %w", binaryPath, err)
	}
	hash := c.hasher.Sum(data)

	if c.expectedHash != "" && hash != c.expectedHash {
		return orchestrator.IntegrityResult{
			IsAuthentic: false,
			Hash:        hash,
			Message:     fmt.Sprintf("binary digest does not match pinned release digest %s", c.expectedHash),
		}, nil
	}
	return orchestrator.IntegrityResult{
		IsAuthentic: true,
		Hash:        hash,
		Message:     "binary digest verified",
	}, nil
}
