package report

import (
	"fmt"

	"github.com/caselight-labs/leveler/pkg/leveler"
	"github.com/caselight-labs/leveler/pkg/scoring"
)

// Narrate deterministically derives one narration entry per B1-B9 section
// from the corresponding finding record. Conclusion levels come from fixed
// thresholds on each finding's own confidence and severity fields, never from
// external input.
func Narrate(f leveler.Findings, score scoring.IntegrityScore) []NarrationEntry {
	return []NarrationEntry{
		narrateChronology(f.Chronology),
		narrateContradictions(f.Contradictions),
		narrateGaps(f.Gaps),
		narrateManipulation(f.Manipulation),
		narrateBehavioral(f.Behavioral),
		narrateFinancial(f.Financial),
		narrateCommunication(f.Communication),
		narrateCompliance(f.Compliance),
		narrateScore(score),
	}
}

func narrateChronology(c leveler.ChronologyFinding) NarrationEntry {
	level := ConclusionSpeculative
	switch {
	case c.ChronologyScore >= 0.75:
		level = ConclusionCertain
	case c.ChronologyScore >= 0.5:
		level = ConclusionProbable
	case c.ChronologyScore >= 0.25:
		level = ConclusionPossible
	}
	return NarrationEntry{
		Section:         "B1",
		Narrative:       fmt.Sprintf("The timeline reconstructs %d events; %d items rely on ordering language rather than explicit timestamps.", len(c.Events), c.ReconstructedCount),
		ConclusionLevel: level,
	}
}

func narrateContradictions(c leveler.ContradictionFinding) NarrationEntry {
	level := ConclusionCertain
	narrative := "No cross-document contradictions were detected."
	switch {
	case c.CriticalCount > 0:
		level = ConclusionCertain
		narrative = fmt.Sprintf("%d critical and %d high-severity contradictions were detected across the evidence set.", c.CriticalCount, c.HighCount)
	case c.HighCount > 0:
		level = ConclusionProbable
		narrative = fmt.Sprintf("%d high-severity contradictions were detected.", c.HighCount)
	case len(c.Contradictions) > 0:
		level = ConclusionPossible
		narrative = fmt.Sprintf("%d lower-severity contradictions were detected.", len(c.Contradictions))
	}
	return NarrationEntry{
		Section:         "B2",
		Narrative:       narrative,
		ConclusionLevel: level,
		EvidenceRefs:    contradictionRefs(c.Contradictions),
	}
}

func narrateGaps(g leveler.GapFinding) NarrationEntry {
	level := ConclusionCertain
	narrative := "All expected document categories are represented."
	if len(g.Gaps) > 0 {
		narrative = fmt.Sprintf("%d expected document categories are missing (%s severity).", len(g.Gaps), g.Severity)
		switch g.Severity {
		case leveler.SeverityCritical, leveler.SeverityHigh:
			level = ConclusionCertain
		case leveler.SeverityMedium:
			level = ConclusionProbable
		default:
			level = ConclusionPossible
		}
	}
	return NarrationEntry{Section: "B3", Narrative: narrative, ConclusionLevel: level}
}

func narrateManipulation(m leveler.ManipulationFinding) NarrationEntry {
	level := ConclusionSpeculative
	switch m.RiskLevel {
	case leveler.SeverityCritical:
		level = ConclusionCertain
	case leveler.SeverityHigh:
		level = ConclusionProbable
	case leveler.SeverityMedium:
		level = ConclusionPossible
	}
	refs := append(append([]string{}, m.BackdatingRefs...), m.EditedRefs...)
	return NarrationEntry{
		Section:         "B4",
		Narrative:       fmt.Sprintf("Timeline manipulation risk is %s: %s.", m.RiskLevel, m.Details),
		ConclusionLevel: level,
		EvidenceRefs:    refs,
	}
}

func narrateBehavioral(b leveler.BehavioralFinding) NarrationEntry {
	level := ConclusionSpeculative
	if b.EvidenceOfDeception {
		level = ConclusionProbable
	}
	if b.OverallAssessment == "Highly Evasive" {
		level = ConclusionCertain
	}
	var refs []string
	for _, p := range b.Patterns {
		refs = append(refs, p.EvidenceRefs...)
	}
	return NarrationEntry{
		Section:         "B5",
		Narrative:       fmt.Sprintf("Behavioral assessment: %s. %s.", b.OverallAssessment, b.Details),
		ConclusionLevel: level,
		EvidenceRefs:    dedupeOrdered(refs),
	}
}

func narrateFinancial(f leveler.FinancialFinding) NarrationEntry {
	level := ConclusionPossible
	if f.TransactionCount > 0 {
		level = ConclusionProbable
	}
	if len(f.Anomalies) == 0 && f.TransactionCount > 0 {
		level = ConclusionCertain
	}
	return NarrationEntry{
		Section:         "B6",
		Narrative:       fmt.Sprintf("%d currency amounts correlate at %.2f with %d anomalies.", f.TransactionCount, f.CorrelationScore, len(f.Anomalies)),
		ConclusionLevel: level,
	}
}

func narrateCommunication(c leveler.CommunicationFinding) NarrationEntry {
	level := ConclusionPossible
	if c.DeletionRate > 0.3 {
		level = ConclusionProbable
	}
	return NarrationEntry{
		Section:         "B7",
		Narrative:       fmt.Sprintf("Communication review found %d message indicators, a deletion rate of %.2f and %d avoided topics.", c.MessageCount, c.DeletionRate, len(c.AvoidedTopics)),
		ConclusionLevel: level,
	}
}

func narrateCompliance(c leveler.ComplianceFinding) NarrationEntry {
	level := ConclusionCertain
	if len(c.Issues) > 0 {
		level = ConclusionProbable
	}
	return NarrationEntry{
		Section:         "B8",
		Narrative:       fmt.Sprintf("Jurisdictional compliance: %s.", c.Details),
		ConclusionLevel: level,
	}
}

func narrateScore(s scoring.IntegrityScore) NarrationEntry {
	return NarrationEntry{
		Section:         "B9",
		Narrative:       fmt.Sprintf("Composite integrity score %d (%s). %s", s.Score, s.Category, s.Recommendation),
		ConclusionLevel: ConclusionCertain,
	}
}

func contradictionRefs(cs []leveler.Contradiction) []string {
	var refs []string
	for _, c := range cs {
		refs = append(refs, c.EvidenceRefA, c.EvidenceRefB)
	}
	return dedupeOrdered(refs)
}

func dedupeOrdered(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	var out []string
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
