package leveler

import (
	"fmt"
	"unicode/utf8"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

const snippetRadius = 40

// AnalyzeContradictions (B2) tests every unordered pair of evidence items
// against the contradiction pattern table and the antonym pair table.
// A pattern counts only when it hits both items of a pair. Severity is a
// static lookup: an explicit per-pattern override wins, otherwise the
// contradiction type sets the default.
func AnalyzeContradictions(items []ingest.EvidenceItem, tables *rules.Tables) ContradictionFinding {
	var found []Contradiction

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]

			for k := range tables.Contradiction.Patterns {
				p := &tables.Contradiction.Patterns[k]
				locA := p.Regexp().FindStringIndex(a.Text)
				if locA == nil {
					continue
				}
				locB := p.Regexp().FindStringIndex(b.Text)
				if locB == nil {
					continue
				}
				ctype := ContradictionType(p.Type)
				found = append(found, Contradiction{
					Type:         ctype,
					Severity:     patternSeverity(p, ctype),
					EvidenceRefA: a.ID,
					EvidenceRefB: b.ID,
					SnippetA:     snippet(a.Text, locA[0]),
					SnippetB:     snippet(b.Text, locB[0]),
					Pattern:      p.ID,
					Description:  fmt.Sprintf("pattern %q matched %s and %s", p.ID, a.Name, b.Name),
				})
			}

			for k := range tables.Contradiction.AntonymPairs {
				p := &tables.Contradiction.AntonymPairs[k]
				locA, locB := antonymHit(p, a.Text, b.Text)
				if locA == nil {
					continue
				}
				found = append(found, Contradiction{
					Type:         ContradictionDirect,
					Severity:     SeverityHigh,
					EvidenceRefA: a.ID,
					EvidenceRefB: b.ID,
					SnippetA:     snippet(a.Text, locA[0]),
					SnippetB:     snippet(b.Text, locB[0]),
					Pattern:      fmt.Sprintf("antonym:%s|%s", p.A, p.B),
					Description:  fmt.Sprintf("opposing terms %q and %q across %s and %s", p.A, p.B, a.Name, b.Name),
				})
			}
		}
	}

	finding := ContradictionFinding{Contradictions: found}
	for _, c := range found {
		switch c.Severity {
		case SeverityCritical:
			finding.CriticalCount++
		case SeverityHigh:
			finding.HighCount++
		case SeverityMedium:
			finding.MediumCount++
		default:
			finding.LowCount++
		}
	}
	finding.Details = fmt.Sprintf("%d contradictions (%d critical, %d high, %d medium, %d low)",
		len(found), finding.CriticalCount, finding.HighCount, finding.MediumCount, finding.LowCount)
	return finding
}

func patternSeverity(p *rules.ContradictionPattern, ctype ContradictionType) Severity {
	if p.Severity != "" {
		return Severity(p.Severity)
	}
	switch ctype {
	case ContradictionDirect:
		return SeverityHigh
	case ContradictionFactual, ContradictionOmission:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// antonymHit reports match positions when one side of the pair appears in
// textA and the other side in textB, in either orientation.
func antonymHit(p *rules.AntonymPair, textA, textB string) (locA, locB []int) {
	if la, lb := p.RegexpA().FindStringIndex(textA), p.RegexpB().FindStringIndex(textB); la != nil && lb != nil {
		return la, lb
	}
	if la, lb := p.RegexpB().FindStringIndex(textA), p.RegexpA().FindStringIndex(textB); la != nil && lb != nil {
		return la, lb
	}
	return nil, nil
}

// snippet slices a fixed-radius context window around pos, widened to the
// nearest rune boundaries so the result is always valid UTF-8.
func snippet(text string, pos int) string {
	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := pos + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[start:end]
}
