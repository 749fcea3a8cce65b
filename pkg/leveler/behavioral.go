package leveler

import (
	"fmt"
	"strings"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

const (
	behavioralSaturationHits = 5
	highlyEvasiveThreshold   = 0.8
	somewhatEvasiveThreshold = 0.5
)

// AnalyzeBehavioral (B5) counts keyword-indicator hits for the five behavior
// categories. Confidence per category saturates at five hits; the overall
// label is a threshold on the maximum confidence observed.
func AnalyzeBehavioral(items []ingest.EvidenceItem, tables *rules.Tables) BehavioralFinding {
	var patterns []BehavioralPattern
	maxConfidence := 0.0
	deception := false

	for _, cat := range tables.Behavioral.Categories {
		hits := 0
		var matched []string
		var refs []string
		for _, item := range items {
			lower := strings.ToLower(item.Text)
			itemHit := false
			for _, ind := range cat.Indicators {
				if strings.Contains(lower, strings.ToLower(ind)) {
					hits++
					matched = append(matched, ind)
					itemHit = true
				}
			}
			if itemHit {
				refs = append(refs, item.ID)
			}
		}
		if hits == 0 {
			continue
		}
		confidence := minFloat(1.0, float64(hits)/behavioralSaturationHits)
		if confidence > maxConfidence {
			maxConfidence = confidence
		}
		if confidence > somewhatEvasiveThreshold {
			deception = true
		}
		patterns = append(patterns, BehavioralPattern{
			PatternType:       BehaviorType(cat.Type),
			MatchedIndicators: matched,
			Confidence:        confidence,
			EvidenceRefs:      refs,
		})
	}

	assessment := "Transparent"
	switch {
	case maxConfidence > highlyEvasiveThreshold:
		assessment = "Highly Evasive"
	case maxConfidence > somewhatEvasiveThreshold:
		assessment = "Somewhat Evasive"
	}

	return BehavioralFinding{
		Patterns:            patterns,
		OverallAssessment:   assessment,
		EvidenceOfDeception: deception,
		Details: fmt.Sprintf("%d behavior categories triggered; max confidence %.2f",
			len(patterns), maxConfidence),
	}
}
