// Package orchestrator sequences one case run through the fixed pipeline
// VALIDATE → VERIFY_PLATFORM_INTEGRITY → INGEST → ANALYZE → SCORE → NARRATE →
// SEAL → ASSEMBLE → COMPLETE. Every stage failure short-circuits to FAILED
// and returns a single typed error; nothing is retried and nothing is
// partially salvaged.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/caselight-labs/leveler/pkg/custody"
	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/leveler"
	"github.com/caselight-labs/leveler/pkg/report"
	"github.com/caselight-labs/leveler/pkg/rules"
	"github.com/caselight-labs/leveler/pkg/scoring"
)

// Evidence count bounds. A case never runs outside them.
const (
	MinEvidenceItems = 1
	MaxEvidenceItems = 10
)

// FailFastIngest documents the current partial-evidence policy: a single
// ingest failure fails the whole case. Product has not yet decided whether a
// failed document should instead be skipped and recorded; runIngest is the
// single place that policy would change.
const FailFastIngest = true

// defaultCollaboratorTimeout bounds the two external calls (integrity check,
// sealing). A timeout is a fatal FAILED transition, never a retry.
const defaultCollaboratorTimeout = 30 * time.Second

// CaseInput describes one case run.
type CaseInput struct {
	CaseID        string
	CaseName      string
	EvidencePaths []string
	BinaryPath    string
	SourceHint    string
}

// Orchestrator drives the case pipeline.
type Orchestrator struct {
	tables   *rules.Tables
	ingestor *ingest.Ingestor
	checker  PlatformIntegrityChecker
	sealer   Sealer

	clock         func() time.Time
	idgen         func() string
	logger        *slog.Logger
	tracer        trace.Tracer
	collabTimeout time.Duration
}

// New creates an orchestrator over the given rule tables and collaborators.
func New(tables *rules.Tables, ingestor *ingest.Ingestor, checker PlatformIntegrityChecker, sealer Sealer) *Orchestrator {
	return &Orchestrator{
		tables:        tables,
		ingestor:      ingestor,
		checker:       checker,
		sealer:        sealer,
		clock:         time.Now,
		idgen:         uuid.NewString,
		logger:        slog.Default().With("component", "orchestrator"),
		tracer:        otel.Tracer("leveler/orchestrator"),
		collabTimeout: defaultCollaboratorTimeout,
	}
}

// WithClock overrides the clock for deterministic testing.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// WithIDGenerator overrides case id generation for deterministic testing.
func (o *Orchestrator) WithIDGenerator(idgen func() string) *Orchestrator {
	o.idgen = idgen
	return o
}

// WithLogger overrides the stage-transition logger.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	o.logger = logger.With("component", "orchestrator")
	return o
}

// WithCollaboratorTimeout overrides the timeout applied to the integrity
// check and sealing calls.
func (o *Orchestrator) WithCollaboratorTimeout(d time.Duration) *Orchestrator {
	o.collabTimeout = d
	return o
}

// Run executes the full pipeline for one case. On success it returns the
// assembled report and the custody log including the COMPLETE entry. On
// failure it returns no report, the custody log accumulated up to the failed
// stage, and a typed error naming the stage and cause.
func (o *Orchestrator) Run(ctx context.Context, input CaseInput) (*report.CaseReport, custody.Log, error) {
	caseID := input.CaseID
	if caseID == "" {
		caseID = o.idgen()
	}
	log := custody.NewLog()
	logger := o.logger.With("case_id", caseID)

	ctx, span := o.tracer.Start(ctx, "case.run", trace.WithAttributes(
		attribute.String("case.id", caseID),
		attribute.Int("case.evidence_count", len(input.EvidencePaths)),
	))
	defer span.End()

	// VALIDATE — before any file I/O.
	if len(input.EvidencePaths) < MinEvidenceItems || len(input.EvidencePaths) > MaxEvidenceItems {
		logger.ErrorContext(ctx, "stage failed", "stage", StageValidate, "count", len(input.EvidencePaths))
		return nil, log, &ValidationError{Count: len(input.EvidencePaths)}
	}
	log, err := o.record(ctx, logger, log, StageValidate, map[string]string{
		"evidence_count": strconv.Itoa(len(input.EvidencePaths)),
	})
	if err != nil {
		return nil, log, err
	}

	// VERIFY_PLATFORM_INTEGRITY.
	log, err = o.runIntegrityCheck(ctx, logger, log, input.BinaryPath)
	if err != nil {
		return nil, log, err
	}

	// INGEST.
	items, log, err := o.runIngest(ctx, logger, log, input)
	if err != nil {
		return nil, log, err
	}

	// ANALYZE.
	findings := o.runAnalyze(ctx, items)
	log, err = o.record(ctx, logger, log, StageAnalyze, nil)
	if err != nil {
		return nil, log, err
	}

	// SCORE.
	score := scoring.Score(findings)
	log, err = o.record(ctx, logger, log, StageScore, map[string]string{
		"score":    strconv.Itoa(score.Score),
		"category": string(score.Category),
	})
	if err != nil {
		return nil, log, err
	}

	// NARRATE.
	narration := report.Narrate(findings, score)
	log, err = o.record(ctx, logger, log, StageNarrate, map[string]string{
		"entries": strconv.Itoa(len(narration)),
	})
	if err != nil {
		return nil, log, err
	}

	// SEAL.
	ruleHash, err := o.tables.Hash()
	if err != nil {
		return nil, log, &SealingError{Err: err}
	}
	draft := &report.CaseReport{
		CaseID:      caseID,
		CaseName:    input.CaseName,
		CreatedAt:   o.clock().UTC(),
		RuleVersion: o.tables.Version,
		RuleHash:    ruleHash,
		Evidence:    items,
		Findings:    findings,
		Score:       score,
		Narration:   narration,
		Custody:     log.Entries,
	}
	sealing, log, err := o.runSeal(ctx, logger, log, draft)
	if err != nil {
		return nil, log, err
	}

	// ASSEMBLE.
	log, err = o.record(ctx, logger, log, StageAssemble, map[string]string{
		"report_hash": sealing.ReportHash,
	})
	if err != nil {
		return nil, log, err
	}
	final := *draft
	final.Sealing = sealing
	final.Custody = log.Entries

	log, err = o.record(ctx, logger, log, StageComplete, nil)
	if err != nil {
		return nil, log, err
	}
	logger.InfoContext(ctx, "case complete", "score", score.Score, "category", string(score.Category))
	return &final, log, nil
}

func (o *Orchestrator) runIntegrityCheck(ctx context.Context, logger *slog.Logger, log custody.Log, binaryPath string) (custody.Log, error) {
	cctx, cancel := context.WithTimeout(ctx, o.collabTimeout)
	defer cancel()

	result, err := o.checker.Check(cctx, binaryPath)
	if err != nil {
		log = o.recordFailure(ctx, logger, log, StageVerifyIntegrity, err.Error())
		return log, &IntegrityError{Err: err}
	}
	if !result.IsAuthentic {
		log = o.recordFailure(ctx, logger, log, StageVerifyIntegrity, result.Message)
		return log, &IntegrityError{Hash: result.Hash, Message: result.Message}
	}
	return o.record(ctx, logger, log, StageVerifyIntegrity, map[string]string{
		"platform_hash": result.Hash,
	})
}

func (o *Orchestrator) runIngest(ctx context.Context, logger *slog.Logger, log custody.Log, input CaseInput) ([]ingest.EvidenceItem, custody.Log, error) {
	ctx, span := o.tracer.Start(ctx, "case.ingest")
	defer span.End()

	items, err := o.ingestor.IngestAll(ctx, input.EvidencePaths, input.SourceHint)
	if err != nil {
		log = o.recordFailure(ctx, logger, log, StageIngest, err.Error())
		return nil, log, err
	}
	log, err = o.record(ctx, logger, log, StageIngest, map[string]string{
		"items": strconv.Itoa(len(items)),
	})
	return items, log, err
}

func (o *Orchestrator) runAnalyze(ctx context.Context, items []ingest.EvidenceItem) leveler.Findings {
	_, span := o.tracer.Start(ctx, "case.analyze", trace.WithAttributes(
		attribute.Int("case.items", len(items)),
	))
	defer span.End()
	return leveler.Analyze(items, o.tables)
}

func (o *Orchestrator) runSeal(ctx context.Context, logger *slog.Logger, log custody.Log, draft *report.CaseReport) (report.SealingMetadata, custody.Log, error) {
	payload, err := draft.CanonicalBytes()
	if err != nil {
		log = o.recordFailure(ctx, logger, log, StageSeal, err.Error())
		return report.SealingMetadata{}, log, &SealingError{Err: err}
	}

	cctx, cancel := context.WithTimeout(ctx, o.collabTimeout)
	defer cancel()
	sealing, err := o.sealer.Seal(cctx, payload, map[string]string{
		"case_id":      draft.CaseID,
		"rule_version": draft.RuleVersion,
		"rule_hash":    draft.RuleHash,
	})
	if err != nil {
		log = o.recordFailure(ctx, logger, log, StageSeal, err.Error())
		return report.SealingMetadata{}, log, &SealingError{Err: err}
	}
	log, err = o.record(ctx, logger, log, StageSeal, map[string]string{
		"seal_hash": sealing.SealHash,
	})
	return sealing, log, err
}

// record appends a successful stage transition to the custody log.
func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, log custody.Log, stage Stage, data map[string]string) (custody.Log, error) {
	next, err := log.Append(string(stage), o.clock(), data)
	if err != nil {
		return log, fmt.Errorf("%s: custody append failed: %w", stage, err)
	}
	logger.InfoContext(ctx, "stage complete", "stage", string(stage))
	return next, nil
}

// recordFailure appends the failing check itself before the FAILED
// transition so the custody log explains why no report exists.
func (o *Orchestrator) recordFailure(ctx context.Context, logger *slog.Logger, log custody.Log, stage Stage, cause string) custody.Log {
	next, err := log.Append(string(stage), o.clock(), map[string]string{
		"status": "failed",
		"cause":  cause,
	})
	if err != nil {
		logger.ErrorContext(ctx, "custody append failed", "stage", string(stage), "error", err)
		return log
	}
	logger.ErrorContext(ctx, "stage failed", "stage", string(stage), "cause", cause)
	return next
}
