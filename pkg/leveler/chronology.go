package leveler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

const (
	extractedEventConfidence     = 0.9
	reconstructedEventConfidence = 0.4
)

// AnalyzeChronology (B1) extracts candidate timestamps from every item's text,
// builds the timeline, and counts items that rely on ordering language rather
// than explicit timestamps.
func AnalyzeChronology(items []ingest.EvidenceItem, tables *rules.Tables) ChronologyFinding {
	seen := make(map[string]bool)
	var events []TimelineEvent
	reconstructed := 0

	for _, item := range items {
		itemEvents := 0
		for i := range tables.Chronology.TimestampPatterns {
			p := &tables.Chronology.TimestampPatterns[i]
			for _, match := range p.Regexp().FindAllString(item.Text, -1) {
				ts, err := time.Parse(p.Layout, match)
				if err != nil {
					continue
				}
				key := item.ID + "|" + ts.UTC().Format(time.RFC3339)
				if seen[key] {
					continue
				}
				seen[key] = true
				events = append(events, TimelineEvent{
					Timestamp:        ts.UTC(),
					SourceEvidenceID: item.ID,
					Confidence:       extractedEventConfidence,
					IsReconstructed:  false,
				})
				itemEvents++
			}
		}

		if containsAnyFold(item.Text, tables.Chronology.OrderingMarkers) {
			reconstructed++
			if itemEvents == 0 {
				events = append(events, TimelineEvent{
					Timestamp:        item.CapturedAt,
					SourceEvidenceID: item.ID,
					Confidence:       reconstructedEventConfidence,
					IsReconstructed:  true,
				})
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].SourceEvidenceID < events[j].SourceEvidenceID
	})

	score := 0.0
	if len(items) > 0 {
		score = minFloat(1.0, float64(len(events))/(float64(len(items))*3))
	}

	return ChronologyFinding{
		Events:             events,
		ReconstructedCount: reconstructed,
		ChronologyScore:    score,
		Details: fmt.Sprintf("%d timeline events extracted from %d items; %d items rely on ordering language",
			len(events), len(items), reconstructed),
	}
}

func containsAnyFold(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
