package leveler

import (
	"fmt"
	"time"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// AnalyzeManipulation (B4) flags backdating and edit-after-fact language in
// item text, and metadata whose modification time trails its creation time by
// more than the configured threshold.
func AnalyzeManipulation(items []ingest.EvidenceItem, tables *rules.Tables) ManipulationFinding {
	threshold := time.Duration(tables.Manipulation.MetadataGapHours) * time.Hour

	var finding ManipulationFinding
	for _, item := range items {
		if containsAnyFold(item.Text, tables.Manipulation.BackdatingMarkers) {
			finding.BackdatingRefs = append(finding.BackdatingRefs, item.ID)
		}
		if containsAnyFold(item.Text, tables.Manipulation.EditingMarkers) {
			finding.EditedRefs = append(finding.EditedRefs, item.ID)
		}
		if gap, ok := metadataGap(item, threshold); ok {
			finding.MetadataGaps = append(finding.MetadataGaps, gap)
		}
	}

	switch {
	case len(finding.BackdatingRefs) > 0 && len(finding.EditedRefs) > 0:
		finding.RiskLevel = SeverityCritical
	case len(finding.BackdatingRefs) > 0 || len(finding.EditedRefs) > 0:
		finding.RiskLevel = SeverityHigh
	case len(finding.MetadataGaps) > 0:
		finding.RiskLevel = SeverityMedium
	default:
		finding.RiskLevel = SeverityLow
	}

	finding.Details = fmt.Sprintf("%d backdating signals, %d edit-after-fact signals, %d suspicious metadata gaps",
		len(finding.BackdatingRefs), len(finding.EditedRefs), len(finding.MetadataGaps))
	return finding
}

func metadataGap(item ingest.EvidenceItem, threshold time.Duration) (TimingGap, bool) {
	created, err := time.Parse(time.RFC3339, item.Metadata[ingest.MetaCreatedAt])
	if err != nil {
		return TimingGap{}, false
	}
	modified, err := time.Parse(time.RFC3339, item.Metadata[ingest.MetaLastModified])
	if err != nil {
		return TimingGap{}, false
	}
	if modified.Sub(created) <= threshold {
		return TimingGap{}, false
	}
	return TimingGap{
		Start:           created.UTC(),
		End:             modified.UTC(),
		DurationSeconds: int64(modified.Sub(created) / time.Second),
		Significance:    GapSuspicious,
	}, true
}
