// Command leveler runs one case analysis over a set of document paths and
// prints the sealed case report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caselight-labs/leveler/pkg/crypto"
	"github.com/caselight-labs/leveler/pkg/ingest"
	"github.com/caselight-labs/leveler/pkg/orchestrator"
	"github.com/caselight-labs/leveler/pkg/platform"
	"github.com/caselight-labs/leveler/pkg/rules"
	"github.com/caselight-labs/leveler/pkg/seal"
)

func main() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// Run is the entrypoint, split out for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("leveler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	caseName := fs.String("case", "unnamed case", "case name")
	rulesPath := fs.String("rules", "", "rule tables YAML (default: built-in tables)")
	sealKey := fs.String("seal-key", "", "hex or raw key for the report sealer (required)")
	expectedHash := fs.String("binary-hash", "", "pinned release digest for the integrity check")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	paths := fs.Args()

	logger := slog.New(slog.NewJSONHandler(stderr, nil))
	slog.SetDefault(logger)

	if *sealKey == "" {
		fmt.Fprintln(stderr, "leveler: -seal-key is required")
		return 2
	}

	tables := rules.DefaultTables()
	if *rulesPath != "" {
		var err error
		tables, err = rules.Load(*rulesPath)
		if err != nil {
			fmt.Fprintf(stderr, "leveler: %v\n", err)
			return 1
		}
	}

	hasher := crypto.NewSHA3Hasher()
	orch := orchestrator.New(
		tables,
		ingest.NewIngestor(hasher),
		platform.NewChecker(*expectedHash, hasher),
		seal.NewHMACSealer([]byte(*sealKey)),
	)

	rep, _, err := orch.Run(context.Background(), orchestrator.CaseInput{
		CaseName:      *caseName,
		EvidencePaths: paths,
	})
	if err != nil {
		fmt.Fprintf(stderr, "leveler: %v\n", err)
		return 1
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "leveler: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}
