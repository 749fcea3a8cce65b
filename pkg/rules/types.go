// Package rules provides the versioned rule tables that drive every analyzer.
// Tables are plain data (YAML on disk, embedded defaults) so rules can change
// without recompilation and a determinism test can pin an exact table version.
package rules

import "regexp"

// Tables is one complete, versioned rule set. All analyzer behavior that is
// not pure arithmetic comes from here.
type Tables struct {
	Version       string             `yaml:"version" json:"version"`
	Chronology    ChronologyRules    `yaml:"chronology" json:"chronology"`
	Contradiction ContradictionRules `yaml:"contradiction" json:"contradiction"`
	Gaps          GapRules           `yaml:"gaps" json:"gaps"`
	Manipulation  ManipulationRules  `yaml:"manipulation" json:"manipulation"`
	Behavioral    BehavioralRules    `yaml:"behavioral" json:"behavioral"`
	Financial     FinancialRules     `yaml:"financial" json:"financial"`
	Communication CommunicationRules `yaml:"communication" json:"communication"`
	Jurisdiction  JurisdictionRules  `yaml:"jurisdiction" json:"jurisdiction"`
}

// TimestampPattern pairs an extraction regex with the time layout used to
// parse its matches.
type TimestampPattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Layout  string `yaml:"layout" json:"layout"`

	re *regexp.Regexp
}

// Regexp returns the compiled extraction regex.
func (p *TimestampPattern) Regexp() *regexp.Regexp { return p.re }

// ChronologyRules drive timestamp extraction and reconstruction counting.
type ChronologyRules struct {
	TimestampPatterns []TimestampPattern `yaml:"timestamp_patterns" json:"timestamp_patterns"`
	OrderingMarkers   []string           `yaml:"ordering_markers" json:"ordering_markers"`
}

// ContradictionPattern is one cross-document contradiction rule. A pair of
// evidence items matches only when the regex hits both items. Severity, when
// set, overrides the type-based default.
type ContradictionPattern struct {
	ID       string `yaml:"id" json:"id"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Type     string `yaml:"type" json:"type"`
	Severity string `yaml:"severity,omitempty" json:"severity,omitempty"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern.
func (p *ContradictionPattern) Regexp() *regexp.Regexp { return p.re }

// AntonymPair is a word pair whose cross-document co-occurrence signals a
// semantic contradiction.
type AntonymPair struct {
	A string `yaml:"a" json:"a"`
	B string `yaml:"b" json:"b"`

	reA, reB *regexp.Regexp
}

// RegexpA returns the word-boundary regex for side A.
func (p *AntonymPair) RegexpA() *regexp.Regexp { return p.reA }

// RegexpB returns the word-boundary regex for side B.
func (p *AntonymPair) RegexpB() *regexp.Regexp { return p.reB }

// ContradictionRules drive the pairwise contradiction analyzer.
type ContradictionRules struct {
	Patterns     []ContradictionPattern `yaml:"patterns" json:"patterns"`
	AntonymPairs []AntonymPair          `yaml:"antonym_pairs" json:"antonym_pairs"`
}

// GapCategory is one expected-document category; a case with zero matches for
// the category across the whole evidence set has a gap.
type GapCategory struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// GapRules list the expected-document checklist.
type GapRules struct {
	Categories []GapCategory `yaml:"categories" json:"categories"`
}

// ManipulationRules drive the timeline-manipulation analyzer.
type ManipulationRules struct {
	BackdatingMarkers []string `yaml:"backdating_markers" json:"backdating_markers"`
	EditingMarkers    []string `yaml:"editing_markers" json:"editing_markers"`
	MetadataGapHours  int      `yaml:"metadata_gap_hours" json:"metadata_gap_hours"`
}

// BehaviorCategory is one behavioral pattern category with its keyword
// indicators.
type BehaviorCategory struct {
	Type       string   `yaml:"type" json:"type"`
	Indicators []string `yaml:"indicators" json:"indicators"`
}

// BehavioralRules list the five behavior categories.
type BehavioralRules struct {
	Categories []BehaviorCategory `yaml:"categories" json:"categories"`
}

// FinancialRules drive currency extraction and anomaly flagging.
type FinancialRules struct {
	AmountPatterns     []string `yaml:"amount_patterns" json:"amount_patterns"`
	MagnitudeThreshold float64  `yaml:"magnitude_threshold" json:"magnitude_threshold"`

	res []*regexp.Regexp
}

// AmountRegexps returns the compiled amount extraction regexes.
func (f *FinancialRules) AmountRegexps() []*regexp.Regexp { return f.res }

// CommunicationRules drive the communication-pattern analyzer.
type CommunicationRules struct {
	MessageMarkers        []string `yaml:"message_markers" json:"message_markers"`
	ReplyMarkers          []string `yaml:"reply_markers" json:"reply_markers"`
	DeletionMarkers       []string `yaml:"deletion_markers" json:"deletion_markers"`
	AvoidancePhrases      []string `yaml:"avoidance_phrases" json:"avoidance_phrases"`
	ResponseWindowSeconds int64    `yaml:"response_window_seconds" json:"response_window_seconds"`
}

// CheckKind identifies a jurisdiction check implementation.
type CheckKind string

const (
	CheckRTLScript          CheckKind = "rtl_script"
	CheckCreationTimestamps CheckKind = "creation_timestamps"
	CheckDataMinimization   CheckKind = "data_minimization"
)

// JurisdictionCheck binds one check kind to a jurisdiction and the issue and
// recommendation strings emitted on failure.
type JurisdictionCheck struct {
	Jurisdiction   string    `yaml:"jurisdiction" json:"jurisdiction"`
	Kind           CheckKind `yaml:"kind" json:"kind"`
	Issue          string    `yaml:"issue" json:"issue"`
	Recommendation string    `yaml:"recommendation" json:"recommendation"`
}

// JurisdictionRules drive the compliance analyzer.
type JurisdictionRules struct {
	Checks               []JurisdictionCheck `yaml:"checks" json:"checks"`
	PersonalDataPatterns []string            `yaml:"personal_data_patterns" json:"personal_data_patterns"`

	personalRes []*regexp.Regexp
}

// PersonalDataRegexps returns the compiled personal-data regexes.
func (j *JurisdictionRules) PersonalDataRegexps() []*regexp.Regexp { return j.personalRes }
