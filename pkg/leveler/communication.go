package leveler

import (
	"fmt"
	"strings"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// AnalyzeCommunication (B7) approximates response cadence from message and
// reply markers (a fixed window per hit, since true send timestamps are not
// always resolvable), counts deletion language, and collects topic-avoidance
// phrases found verbatim.
func AnalyzeCommunication(items []ingest.EvidenceItem, tables *rules.Tables) CommunicationFinding {
	messages := 0
	deletions := 0
	avoidedSet := make(map[string]bool)

	for _, item := range items {
		lower := strings.ToLower(item.Text)
		messages += countHits(lower, tables.Communication.MessageMarkers)
		messages += countHits(lower, tables.Communication.ReplyMarkers)
		deletions += countHits(lower, tables.Communication.DeletionMarkers)
		for _, phrase := range tables.Communication.AvoidancePhrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				avoidedSet[phrase] = true
			}
		}
	}

	// Emit avoided topics in table order, not map order.
	var avoided []string
	for _, phrase := range tables.Communication.AvoidancePhrases {
		if avoidedSet[phrase] {
			avoided = append(avoided, phrase)
		}
	}

	rate := 0.0
	if len(items) > 0 {
		rate = float64(deletions) / float64(len(items))
	}

	var avgResponse int64
	if messages > 0 {
		avgResponse = tables.Communication.ResponseWindowSeconds
	}

	return CommunicationFinding{
		MessageCount:       messages,
		AvgResponseSeconds: avgResponse,
		DeletionCount:      deletions,
		DeletionRate:       rate,
		AvoidedTopics:      avoided,
		Details: fmt.Sprintf("%d message indicators, %d deletion signals, %d avoided topics",
			messages, deletions, len(avoided)),
	}
}

func countHits(lower string, markers []string) int {
	hits := 0
	for _, m := range markers {
		hits += strings.Count(lower, strings.ToLower(m))
	}
	return hits
}
