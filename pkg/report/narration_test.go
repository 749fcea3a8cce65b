package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselight-labs/leveler/pkg/leveler"
	"github.com/caselight-labs/leveler/pkg/scoring"
)

func cleanFindings() leveler.Findings {
	return leveler.Findings{
		Chronology:   leveler.ChronologyFinding{ChronologyScore: 1.0},
		Gaps:         leveler.GapFinding{Severity: leveler.SeverityLow},
		Manipulation: leveler.ManipulationFinding{RiskLevel: leveler.SeverityLow},
		Behavioral:   leveler.BehavioralFinding{OverallAssessment: "Transparent"},
		Financial:    leveler.FinancialFinding{CorrelationScore: 1.0},
	}
}

func TestNarrateEmitsAllSectionsInOrder(t *testing.T) {
	entries := Narrate(cleanFindings(), scoring.IntegrityScore{Score: 100, Category: scoring.CategoryExcellent})

	require.Len(t, entries, 9)
	for i, e := range entries {
		assert.Equal(t, []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B9"}[i], e.Section)
		assert.NotEmpty(t, e.Narrative)
		assert.NotEmpty(t, e.ConclusionLevel)
	}
}

func TestNarrateCleanFindingsLevels(t *testing.T) {
	entries := Narrate(cleanFindings(), scoring.IntegrityScore{Score: 100, Category: scoring.CategoryExcellent})

	assert.Equal(t, ConclusionCertain, entries[0].ConclusionLevel)     // full chronology score
	assert.Equal(t, ConclusionCertain, entries[1].ConclusionLevel)     // no contradictions
	assert.Equal(t, ConclusionCertain, entries[2].ConclusionLevel)     // no gaps
	assert.Equal(t, ConclusionSpeculative, entries[3].ConclusionLevel) // low manipulation risk
	assert.Equal(t, ConclusionSpeculative, entries[4].ConclusionLevel) // no deception
	assert.Equal(t, ConclusionPossible, entries[5].ConclusionLevel)    // no transactions
	assert.Equal(t, ConclusionPossible, entries[6].ConclusionLevel)
	assert.Equal(t, ConclusionCertain, entries[7].ConclusionLevel) // no compliance issues
	assert.Equal(t, ConclusionCertain, entries[8].ConclusionLevel)
	assert.Contains(t, entries[1].Narrative, "No cross-document contradictions")
	assert.Contains(t, entries[2].Narrative, "All expected document categories")
}

func TestNarrateEscalatesWithFindings(t *testing.T) {
	f := cleanFindings()
	f.Contradictions = leveler.ContradictionFinding{
		Contradictions: []leveler.Contradiction{
			{EvidenceRefA: "a", EvidenceRefB: "b"},
			{EvidenceRefA: "a", EvidenceRefB: "c"},
		},
		CriticalCount: 1,
		HighCount:     1,
	}
	f.Gaps = leveler.GapFinding{Gaps: []string{"contract", "timestamps"}, Severity: leveler.SeverityMedium}
	f.Manipulation = leveler.ManipulationFinding{
		BackdatingRefs: []string{"a"},
		EditedRefs:     []string{"b"},
		RiskLevel:      leveler.SeverityCritical,
	}
	f.Behavioral = leveler.BehavioralFinding{
		Patterns:            []leveler.BehavioralPattern{{EvidenceRefs: []string{"a", "b"}}, {EvidenceRefs: []string{"b"}}},
		EvidenceOfDeception: true,
		OverallAssessment:   "Highly Evasive",
	}
	f.Financial = leveler.FinancialFinding{TransactionCount: 3, CorrelationScore: 1.0}
	f.Communication = leveler.CommunicationFinding{DeletionRate: 0.4}
	f.Compliance = leveler.ComplianceFinding{Issues: []string{"EU: personal data"}}

	entries := Narrate(f, scoring.IntegrityScore{Score: 20, Category: scoring.CategorySuspect})

	assert.Equal(t, ConclusionCertain, entries[1].ConclusionLevel)
	assert.Equal(t, []string{"a", "b", "c"}, entries[1].EvidenceRefs)
	assert.Equal(t, ConclusionProbable, entries[2].ConclusionLevel)
	assert.Equal(t, ConclusionCertain, entries[3].ConclusionLevel)
	assert.Equal(t, []string{"a", "b"}, entries[3].EvidenceRefs)
	assert.Equal(t, ConclusionCertain, entries[4].ConclusionLevel)
	assert.Equal(t, []string{"a", "b"}, entries[4].EvidenceRefs)
	assert.Equal(t, ConclusionCertain, entries[5].ConclusionLevel) // transactions, no anomalies
	assert.Equal(t, ConclusionProbable, entries[6].ConclusionLevel)
	assert.Equal(t, ConclusionProbable, entries[7].ConclusionLevel)
	assert.Contains(t, entries[8].Narrative, "20 (Suspect)")
}

func TestCanonicalBytesStable(t *testing.T) {
	r := &CaseReport{
		CaseID:      "case-001",
		CaseName:    "Acme v. Zenith",
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RuleVersion: "1.0.0",
		RuleHash:    "abc",
		Findings:    cleanFindings(),
		Narration:   Narrate(cleanFindings(), scoring.IntegrityScore{Score: 100}),
	}

	b1, err := r.CanonicalBytes()
	require.NoError(t, err)
	b2, err := r.CanonicalBytes()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.Contains(t, string(b1), `"case_id":"case-001"`)
}
