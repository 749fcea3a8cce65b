// Package scoring derives the composite 0-100 integrity score (section B9)
// from the eight analyzer finding records. The scorer is a pure function:
// same findings, same score.
package scoring

import (
	"fmt"
	"math"

	"github.com/caselight-labs/leveler/pkg/leveler"
)

// Category is the score band label.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryFair      Category = "Fair"
	CategoryPoor      Category = "Poor"
	CategorySuspect   Category = "Suspect"
)

// IntegrityScore is the composite reliability metric for one case.
type IntegrityScore struct {
	Score          int            `json:"score"`
	Category       Category       `json:"category"`
	Breakdown      map[string]int `json:"breakdown"`
	KeyFindings    []string       `json:"key_findings"`
	Recommendation string         `json:"recommendation"`
}

// Per-section penalty caps.
const (
	chronologyCap    = 15
	contradictionCap = 30
	behavioralCap    = 15
	financialCap     = 10
	communicationCap = 10
	complianceCap    = 5
	gapCap           = 20
	manipulationCap  = 25
)

// Score starts at 100 and subtracts capped, independently bounded penalties
// per analyzer section, then clamps to [0,100] and assigns the band.
func Score(f leveler.Findings) IntegrityScore {
	penalties := map[string]struct {
		penalty int
		cap     int
	}{
		"chronology":     {chronologyPenalty(f.Chronology), chronologyCap},
		"contradictions": {contradictionPenalty(f.Contradictions), contradictionCap},
		"gaps":           {gapPenalty(f.Gaps), gapCap},
		"manipulation":   {manipulationPenalty(f.Manipulation), manipulationCap},
		"behavioral":     {behavioralPenalty(f.Behavioral), behavioralCap},
		"financial":      {financialPenalty(f.Financial), financialCap},
		"communication":  {communicationPenalty(f.Communication), communicationCap},
		"compliance":     {compliancePenalty(f.Compliance), complianceCap},
	}

	score := 100
	breakdown := make(map[string]int, len(penalties))
	for section, p := range penalties {
		score -= p.penalty
		breakdown[section] = 100 - p.penalty*100/p.cap
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	category := categoryFor(score)
	return IntegrityScore{
		Score:          score,
		Category:       category,
		Breakdown:      breakdown,
		KeyFindings:    keyFindings(f),
		Recommendation: recommendationFor(category),
	}
}

func chronologyPenalty(c leveler.ChronologyFinding) int {
	switch {
	case c.ChronologyScore < 0.3:
		return 15
	case c.ChronologyScore < 0.6:
		return 10
	case c.ChronologyScore < 0.9:
		return 5
	default:
		return 0
	}
}

func contradictionPenalty(c leveler.ContradictionFinding) int {
	p := c.CriticalCount*10 + c.HighCount*5 + c.MediumCount*2
	if p > contradictionCap {
		return contradictionCap
	}
	return p
}

func gapPenalty(g leveler.GapFinding) int {
	if len(g.Gaps) == 0 {
		return 0
	}
	switch g.Severity {
	case leveler.SeverityCritical:
		return 20
	case leveler.SeverityHigh:
		return 15
	case leveler.SeverityMedium:
		return 10
	default:
		return 2
	}
}

func manipulationPenalty(m leveler.ManipulationFinding) int {
	if len(m.BackdatingRefs) == 0 && len(m.EditedRefs) == 0 && len(m.MetadataGaps) == 0 {
		return 0
	}
	switch m.RiskLevel {
	case leveler.SeverityCritical:
		return 25
	case leveler.SeverityHigh:
		return 15
	case leveler.SeverityMedium:
		return 8
	default:
		return 2
	}
}

func behavioralPenalty(b leveler.BehavioralFinding) int {
	if !b.EvidenceOfDeception || len(b.Patterns) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.Patterns {
		sum += p.Confidence
	}
	avg := sum / float64(len(b.Patterns))
	p := int(math.Round(avg * behavioralCap))
	if p > behavioralCap {
		return behavioralCap
	}
	return p
}

func financialPenalty(f leveler.FinancialFinding) int {
	p := len(f.Anomalies) * 3
	if p > financialCap {
		return financialCap
	}
	return p
}

func communicationPenalty(c leveler.CommunicationFinding) int {
	switch {
	case c.DeletionRate > 0.3:
		return 10
	case c.DeletionRate > 0.1:
		return 5
	default:
		return 0
	}
}

func compliancePenalty(c leveler.ComplianceFinding) int {
	p := len(c.Issues) * 2
	if p > complianceCap {
		return complianceCap
	}
	return p
}

// categoryFor maps the clamped score to its band. The bands partition [0,100]
// with no gap or overlap.
func categoryFor(score int) Category {
	switch {
	case score >= 85:
		return CategoryExcellent
	case score >= 70:
		return CategoryGood
	case score >= 55:
		return CategoryFair
	case score >= 40:
		return CategoryPoor
	default:
		return CategorySuspect
	}
}

func keyFindings(f leveler.Findings) []string {
	var findings []string
	if f.Contradictions.CriticalCount > 0 {
		findings = append(findings, fmt.Sprintf("%d critical contradictions detected", f.Contradictions.CriticalCount))
	}
	if f.Manipulation.RiskLevel.Rank() >= leveler.SeverityHigh.Rank() {
		findings = append(findings, fmt.Sprintf("timeline manipulation risk is %s", f.Manipulation.RiskLevel))
	}
	if f.Behavioral.EvidenceOfDeception {
		findings = append(findings, "behavioral indicators suggest deception")
	}
	if len(f.Gaps.Gaps) > 0 && f.Gaps.Severity.Rank() >= leveler.SeverityHigh.Rank() {
		findings = append(findings, fmt.Sprintf("significant evidence gaps: %d categories missing", len(f.Gaps.Gaps)))
	}
	return findings
}

func recommendationFor(c Category) string {
	switch c {
	case CategoryExcellent:
		return "Evidence set is internally consistent; suitable for submission as-is."
	case CategoryGood:
		return "Evidence set is largely consistent; review the flagged findings before submission."
	case CategoryFair:
		return "Evidence set has material weaknesses; supplement the missing categories and resolve flagged contradictions."
	case CategoryPoor:
		return "Evidence set is unreliable in its current form; substantial corroboration is required."
	default:
		return "Evidence set shows signs of manipulation or systematic inconsistency; treat all conclusions as suspect."
	}
}
