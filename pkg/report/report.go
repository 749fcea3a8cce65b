// Package report defines the CaseReport aggregate: pure data handed whole to
// the rendering layer. Nothing here produces documents; all natural-language
// rendering beyond the short narration log belongs to the consumer.
package report

import (
	"fmt"
	"time"

	"github.com/caselight-labs/leveler/pkg/crypto"
	"github.com/caselight-labs/leveler/pkg/custody"
	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/leveler"
	"github.com/caselight-labs/leveler/pkg/scoring"
)

// ConclusionLevel grades how firm a narration conclusion is.
type ConclusionLevel string

const (
	ConclusionCertain     ConclusionLevel = "CERTAIN"
	ConclusionProbable    ConclusionLevel = "PROBABLE"
	ConclusionPossible    ConclusionLevel = "POSSIBLE"
	ConclusionSpeculative ConclusionLevel = "SPECULATIVE"
)

// NarrationEntry is one derived narrative line for a B1-B9 section.
type NarrationEntry struct {
	Section         string          `json:"section"`
	Narrative       string          `json:"narrative"`
	ConclusionLevel ConclusionLevel `json:"conclusion_level"`
	EvidenceRefs    []string        `json:"evidence_refs,omitempty"`
}

// SealingMetadata is the Sealer's output, embedded verbatim.
type SealingMetadata struct {
	ReportHash    string    `json:"report_hash"`
	SealHash      string    `json:"seal_hash"`
	Timestamp     time.Time `json:"timestamp"`
	WatermarkText string    `json:"watermark_text"`
}

// CaseReport is the aggregate root for one completed case run. Created once,
// never mutated after assembly; ownership transfers whole to the caller.
type CaseReport struct {
	CaseID      string                 `json:"case_id"`
	CaseName    string                 `json:"case_name"`
	CreatedAt   time.Time              `json:"created_at"`
	RuleVersion string                 `json:"rule_version"`
	RuleHash    string                 `json:"rule_hash"`
	Evidence    []ingest.EvidenceItem  `json:"evidence"`
	Findings    leveler.Findings       `json:"findings"`
	Score       scoring.IntegrityScore `json:"score"`
	Narration   []NarrationEntry       `json:"narration"`
	Custody     []custody.Entry        `json:"custody"`
	Sealing     SealingMetadata        `json:"sealing"`
}

// CanonicalBytes returns the RFC 8785 canonical JSON form of the report; this
// is the exact byte sequence presented to the Sealer.
func (r *CaseReport) CanonicalBytes() ([]byte, error) {
	b, err := crypto.CanonicalMarshal(r)
	if err != nil {
		return nil, fmt.Errorf("serialize case report: %w", err)
	}
	return b, nil
}
