package leveler

import (
	"sync"

	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/rules"
)

// Analyze runs the eight analyzers fan-out/fan-in over the same immutable
// evidence set. Every analyzer is a pure function of (items, tables), so the
// result is identical regardless of execution order and no analyzer can fail.
func Analyze(items []ingest.EvidenceItem, tables *rules.Tables) Findings {
	var findings Findings
	var wg sync.WaitGroup

	run := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}

	run(func() { findings.Chronology = AnalyzeChronology(items, tables) })
	run(func() { findings.Contradictions = AnalyzeContradictions(items, tables) })
	run(func() { findings.Gaps = AnalyzeGaps(items, tables) })
	run(func() { findings.Manipulation = AnalyzeManipulation(items, tables) })
	run(func() { findings.Behavioral = AnalyzeBehavioral(items, tables) })
	run(func() { findings.Financial = AnalyzeFinancial(items, tables) })
	run(func() { findings.Communication = AnalyzeCommunication(items, tables) })
	run(func() { findings.Compliance = AnalyzeCompliance(items, tables) })

	wg.Wait()
	return findings
}
