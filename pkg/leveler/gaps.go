package leveler

import (
	"fmt"
	"strings"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// AnalyzeGaps (B3) checks the expected-document checklist: a category with no
// name or content match anywhere in the evidence set is a gap. Severity is a
// step function of the gap count.
func AnalyzeGaps(items []ingest.EvidenceItem, tables *rules.Tables) GapFinding {
	var gaps []string
	for _, cat := range tables.Gaps.Categories {
		if !categoryPresent(items, cat) {
			gaps = append(gaps, cat.Name)
		}
	}

	severity := SeverityLow
	switch {
	case len(gaps) > 4:
		severity = SeverityCritical
	case len(gaps) > 2:
		severity = SeverityHigh
	case len(gaps) > 0:
		severity = SeverityMedium
	}

	return GapFinding{
		Gaps:     gaps,
		Severity: severity,
		Details: fmt.Sprintf("%d of %d expected document categories missing",
			len(gaps), len(tables.Gaps.Categories)),
	}
}

func categoryPresent(items []ingest.EvidenceItem, cat rules.GapCategory) bool {
	for _, item := range items {
		name := strings.ToLower(item.Name)
		text := strings.ToLower(item.Text)
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(kw)
			if strings.Contains(name, kw) || strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}
