package leveler

import (
	"fmt"
	"time"
	"unicode"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// AnalyzeCompliance (B8) runs the independent jurisdiction checks from the
// rule table. Each failed check contributes one issue and one recommendation.
// Note the data-minimization check passes on the absence of personal-data
// patterns.
func AnalyzeCompliance(items []ingest.EvidenceItem, tables *rules.Tables) ComplianceFinding {
	var finding ComplianceFinding

	for _, check := range tables.Jurisdiction.Checks {
		passed := false
		switch check.Kind {
		case rules.CheckRTLScript:
			passed = anyRTLScript(items)
		case rules.CheckCreationTimestamps:
			passed = allCreationTimestamps(items)
		case rules.CheckDataMinimization:
			passed = !anyPersonalData(items, tables)
		}

		finding.Checks = append(finding.Checks, ComplianceCheck{
			Jurisdiction: check.Jurisdiction,
			Kind:         string(check.Kind),
			Passed:       passed,
		})
		if !passed {
			finding.Issues = append(finding.Issues, fmt.Sprintf("%s: %s", check.Jurisdiction, check.Issue))
			finding.Recommendations = append(finding.Recommendations, fmt.Sprintf("%s: %s", check.Jurisdiction, check.Recommendation))
		}
	}

	finding.Details = fmt.Sprintf("%d of %d jurisdiction checks passed",
		len(finding.Checks)-len(finding.Issues), len(finding.Checks))
	return finding
}

func anyRTLScript(items []ingest.EvidenceItem) bool {
	for _, item := range items {
		for _, r := range item.Text {
			if unicode.In(r, unicode.Arabic, unicode.Hebrew) {
				return true
			}
		}
	}
	return false
}

func allCreationTimestamps(items []ingest.EvidenceItem) bool {
	for _, item := range items {
		if !verifiableTimestamp(item) {
			return false
		}
	}
	return len(items) > 0
}

// verifiableTimestamp accepts either an original creation timestamp or, for
// sources that cannot carry one, the filesystem modification timestamp.
func verifiableTimestamp(item ingest.EvidenceItem) bool {
	for _, key := range []string{ingest.MetaCreatedAt, ingest.MetaLastModified} {
		if _, err := time.Parse(time.RFC3339, item.Metadata[key]); err == nil {
			return true
		}
	}
	return false
}

func anyPersonalData(items []ingest.EvidenceItem, tables *rules.Tables) bool {
	for _, item := range items {
		for _, re := range tables.Jurisdiction.PersonalDataRegexps() {
			if re.MatchString(item.Text) {
				return true
			}
		}
	}
	return false
}
