package orchestrator

import "fmt"

// Stage identifies a pipeline state.
type Stage string

const (
	StageValidate        Stage = "VALIDATE"
	StageVerifyIntegrity Stage = "VERIFY_PLATFORM_INTEGRITY"
	StageIngest          Stage = "INGEST"
	StageAnalyze         Stage = "ANALYZE"
	StageScore           Stage = "SCORE"
	StageNarrate         Stage = "NARRATE"
	StageSeal            Stage = "SEAL"
	StageAssemble        Stage = "ASSEMBLE"
	StageComplete        Stage = "COMPLETE"
	StageFailed          Stage = "FAILED"
)

// ValidationError reports a bad evidence count before any processing begins.
type ValidationError struct {
	Count int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: evidence count %d outside the allowed range [%d, %d]",
		StageValidate, e.Count, MinEvidenceItems, MaxEvidenceItems)
}

// IntegrityError reports a failed platform integrity check. No report is
// produced.
type IntegrityError struct {
	Hash    string
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: platform integrity check failed: %v", StageVerifyIntegrity, e.Err)
	}
	return fmt.Sprintf("%s: platform binary not authentic (hash %s): %s", StageVerifyIntegrity, e.Hash, e.Message)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// SealingError reports a failed sealing call. The case is aborted even though
// analysis succeeded; no partial report is returned.
type SealingError struct {
	Err error
}

func (e *SealingError) Error() string {
	return fmt.Sprintf("%s: sealing failed: %v", StageSeal, e.Err)
}

func (e *SealingError) Unwrap() error { return e.Err }
