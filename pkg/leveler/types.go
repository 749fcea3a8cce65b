// Package leveler implements the multi-stage evidence analyzer: eight
// independent, pure analyzers (B1 chronology through B8 jurisdictional
// compliance) over one immutable evidence set, driven entirely by versioned
// rule tables.
package leveler

import "time"

// Severity is the shared ordered severity scale.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank maps a severity to its ordinal; LOW < MEDIUM < HIGH < CRITICAL.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// ContradictionType classifies how two items contradict each other.
type ContradictionType string

const (
	ContradictionDirect     ContradictionType = "direct"
	ContradictionFactual    ContradictionType = "factual_discrepancy"
	ContradictionOmission   ContradictionType = "omission"
	ContradictionTemporal   ContradictionType = "temporal_inconsistency"
	ContradictionBehavioral ContradictionType = "behavioral"
)

// BehaviorType classifies a behavioral pattern category.
type BehaviorType string

const (
	BehaviorGaslighting BehaviorType = "gaslighting"
	BehaviorEvasion     BehaviorType = "evasion"
	BehaviorConcealment BehaviorType = "concealment"
	BehaviorDenial      BehaviorType = "denial"
	BehaviorDeflection  BehaviorType = "deflection"
)

// Contradiction is one detected cross-document contradiction.
type Contradiction struct {
	Type         ContradictionType `json:"type"`
	Severity     Severity          `json:"severity"`
	EvidenceRefA string            `json:"evidence_ref_a"`
	EvidenceRefB string            `json:"evidence_ref_b"`
	SnippetA     string            `json:"snippet_a"`
	SnippetB     string            `json:"snippet_b"`
	Pattern      string            `json:"pattern"`
	Description  string            `json:"description"`
}

// TimelineEvent is one reconstructed point on the case timeline.
type TimelineEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	SourceEvidenceID string    `json:"source_evidence_id"`
	Confidence       float64   `json:"confidence"`
	IsReconstructed  bool      `json:"is_reconstructed"`
}

// GapSignificance classifies a timing gap.
type GapSignificance string

const (
	GapExpected   GapSignificance = "expected"
	GapSuspicious GapSignificance = "suspicious"
)

// TimingGap is a span between two timestamps.
type TimingGap struct {
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	DurationSeconds int64           `json:"duration_seconds"`
	Significance    GapSignificance `json:"significance"`
}

// BehavioralPattern is one behavior category with its matched indicators.
type BehavioralPattern struct {
	PatternType       BehaviorType `json:"pattern_type"`
	MatchedIndicators []string     `json:"matched_indicators"`
	Confidence        float64      `json:"confidence"`
	EvidenceRefs      []string     `json:"evidence_refs"`
}

// ChronologyFinding is the B1 record.
type ChronologyFinding struct {
	Events             []TimelineEvent `json:"events"`
	ReconstructedCount int             `json:"reconstructed_count"`
	ChronologyScore    float64         `json:"chronology_score"`
	Details            string          `json:"details"`
}

// ContradictionFinding is the B2 record.
type ContradictionFinding struct {
	Contradictions []Contradiction `json:"contradictions"`
	CriticalCount  int             `json:"critical_count"`
	HighCount      int             `json:"high_count"`
	MediumCount    int             `json:"medium_count"`
	LowCount       int             `json:"low_count"`
	Details        string          `json:"details"`
}

// GapFinding is the B3 record.
type GapFinding struct {
	Gaps     []string `json:"gaps"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

// ManipulationFinding is the B4 record.
type ManipulationFinding struct {
	BackdatingRefs []string    `json:"backdating_refs"`
	EditedRefs     []string    `json:"edited_refs"`
	MetadataGaps   []TimingGap `json:"metadata_gaps"`
	RiskLevel      Severity    `json:"risk_level"`
	Details        string      `json:"details"`
}

// BehavioralFinding is the B5 record.
type BehavioralFinding struct {
	Patterns            []BehavioralPattern `json:"patterns"`
	OverallAssessment   string              `json:"overall_assessment"`
	EvidenceOfDeception bool                `json:"evidence_of_deception"`
	Details             string              `json:"details"`
}

// FinancialFinding is the B6 record.
type FinancialFinding struct {
	TransactionCount int      `json:"transaction_count"`
	Anomalies        []string `json:"anomalies"`
	CorrelationScore float64  `json:"correlation_score"`
	Details          string   `json:"details"`
}

// CommunicationFinding is the B7 record.
type CommunicationFinding struct {
	MessageCount       int      `json:"message_count"`
	AvgResponseSeconds int64    `json:"avg_response_seconds"`
	DeletionCount      int      `json:"deletion_count"`
	DeletionRate       float64  `json:"deletion_rate"`
	AvoidedTopics      []string `json:"avoided_topics"`
	Details            string   `json:"details"`
}

// ComplianceCheck is the outcome of one jurisdiction check.
type ComplianceCheck struct {
	Jurisdiction string `json:"jurisdiction"`
	Kind         string `json:"kind"`
	Passed       bool   `json:"passed"`
}

// ComplianceFinding is the B8 record.
type ComplianceFinding struct {
	Checks          []ComplianceCheck `json:"checks"`
	Issues          []string          `json:"issues"`
	Recommendations []string          `json:"recommendations"`
	Details         string            `json:"details"`
}

// Findings bundles the eight analyzer records for one case run.
type Findings struct {
	Chronology     ChronologyFinding    `json:"chronology"`
	Contradictions ContradictionFinding `json:"contradictions"`
	Gaps           GapFinding           `json:"gaps"`
	Manipulation   ManipulationFinding  `json:"manipulation"`
	Behavioral     BehavioralFinding    `json:"behavioral"`
	Financial      FinancialFinding     `json:"financial"`
	Communication  CommunicationFinding `json:"communication"`
	Compliance     ComplianceFinding    `json:"compliance"`
}
