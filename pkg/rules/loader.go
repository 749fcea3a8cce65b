package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/caselight-labs/leveler/pkg/crypto"
)

//go:embed tables/default.yaml
var defaultTablesYAML []byte

//go:embed tables/schema.json
var tablesSchemaJSON string

var tablesSchema = jsonschema.MustCompileString("tables/schema.json", tablesSchemaJSON)

// DefaultTables returns the built-in rule set. It panics only if the embedded
// document is corrupt, which a unit test guards against.
func DefaultTables() *Tables {
	t, err := Parse(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default tables invalid: %v", err))
	}
	return t
}

// Load reads and parses a rule-table YAML document from disk.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rule tables %q: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load rule tables %q: %w", path, err)
	}
	return t, nil
}

// Parse validates a YAML rule-table document against the embedded schema,
// checks the semver version, and compiles every regex exactly once.
func Parse(data []byte) (*Tables, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse rule tables: %w", err)
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rule tables: %w", err)
	}
	if _, err := semver.NewVersion(t.Version); err != nil {
		return nil, fmt.Errorf("rule tables version %q is not semver: %w", t.Version, err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// validateSchema round-trips the YAML-decoded value through encoding/json so
// the schema validator sees JSON-typed values.
func validateSchema(generic interface{}) error {
	raw, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("rule tables schema check: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("rule tables schema check: %w", err)
	}
	if err := tablesSchema.Validate(doc); err != nil {
		return fmt.Errorf("rule tables schema check: %w", err)
	}
	return nil
}

func (t *Tables) compile() error {
	for i := range t.Chronology.TimestampPatterns {
		p := &t.Chronology.TimestampPatterns[i]
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return fmt.Errorf("chronology pattern %q: %w", p.Pattern, err)
		}
		p.re = re
	}
	for i := range t.Contradiction.Patterns {
		p := &t.Contradiction.Patterns[i]
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return fmt.Errorf("contradiction pattern %q: %w", p.ID, err)
		}
		p.re = re
	}
	for i := range t.Contradiction.AntonymPairs {
		p := &t.Contradiction.AntonymPairs[i]
		reA, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p.A) + `\b`)
		if err != nil {
			return fmt.Errorf("antonym pair %q/%q: %w", p.A, p.B, err)
		}
		reB, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p.B) + `\b`)
		if err != nil {
			return fmt.Errorf("antonym pair %q/%q: %w", p.A, p.B, err)
		}
		p.reA, p.reB = reA, reB
	}
	t.Financial.res = make([]*regexp.Regexp, 0, len(t.Financial.AmountPatterns))
	for _, raw := range t.Financial.AmountPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return fmt.Errorf("financial amount pattern %q: %w", raw, err)
		}
		t.Financial.res = append(t.Financial.res, re)
	}
	t.Jurisdiction.personalRes = make([]*regexp.Regexp, 0, len(t.Jurisdiction.PersonalDataPatterns))
	for _, raw := range t.Jurisdiction.PersonalDataPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return fmt.Errorf("personal data pattern %q: %w", raw, err)
		}
		t.Jurisdiction.personalRes = append(t.Jurisdiction.personalRes, re)
	}
	return nil
}

// Hash returns the canonical content hash of the rule set, recorded in the
// custody log so a report pins the exact rules that produced it.
func (t *Tables) Hash() (string, error) {
	h, err := crypto.CanonicalHash(t)
	if err != nil {
		return "", fmt.Errorf("hash rule tables: %w", err)
	}
	return h, nil
}
