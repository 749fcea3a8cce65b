package leveler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// defaultCorrelationScore applies when no transactions were found at all.
const defaultCorrelationScore = 0.5

// AnalyzeFinancial (B6) extracts currency amounts, flags duplicates and
// amounts above the magnitude threshold as anomalies, and derives the
// correlation score (transactions − anomalies) / transactions.
func AnalyzeFinancial(items []ingest.EvidenceItem, tables *rules.Tables) FinancialFinding {
	var amounts []float64
	seen := make(map[string]bool)
	var anomalies []string

	for _, item := range items {
		for _, re := range tables.Financial.AmountRegexps() {
			for _, match := range re.FindAllString(item.Text, -1) {
				value, ok := parseAmount(match)
				if !ok {
					continue
				}
				amounts = append(amounts, value)
				key := strconv.FormatFloat(value, 'f', 2, 64)
				if seen[key] {
					anomalies = append(anomalies, fmt.Sprintf("duplicate amount %s in %s", key, item.Name))
				}
				seen[key] = true
				if value > tables.Financial.MagnitudeThreshold {
					anomalies = append(anomalies, fmt.Sprintf("large amount %s in %s", key, item.Name))
				}
			}
		}
	}

	score := defaultCorrelationScore
	if len(amounts) > 0 {
		score = float64(len(amounts)-len(anomalies)) / float64(len(amounts))
		if score < 0 {
			score = 0
		}
	}

	return FinancialFinding{
		TransactionCount: len(amounts),
		Anomalies:        anomalies,
		CorrelationScore: score,
		Details: fmt.Sprintf("%d currency amounts extracted, %d anomalies",
			len(amounts), len(anomalies)),
	}
}

func parseAmount(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
