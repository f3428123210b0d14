package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/mod/semver"

	"github.com/umee-network/wallet-registry/internal/loader"
	"github.com/umee-network/wallet-registry/internal/record"
)

// Validator runs the field check and the structural check.
type Validator struct {
	structure *structure
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	s, err := newStructure()
	if err != nil {
		return nil, err
	}
	return &Validator{structure: s}, nil
}

// Validate reports whether doc passes both checks.
func (v *Validator) Validate(doc record.Document) bool {
	return v.Check(doc).Valid()
}

// Report is the outcome of validating one chain document.
type Report struct {
	File    string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	ChainID string `json:"chainId,omitempty" yaml:"chainId,omitempty" toml:"chainId,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Kind    Kind   `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`

	// ParseError is set when the file could not be decoded at all.
	ParseError      string   `json:"parseError,omitempty" yaml:"parseError,omitempty" toml:"parseError,omitempty"`
	FieldErrors     []string `json:"fieldErrors,omitempty" yaml:"fieldErrors,omitempty" toml:"fieldErrors,omitempty"`
	StructureErrors []string `json:"structureErrors,omitempty" yaml:"structureErrors,omitempty" toml:"structureErrors,omitempty"`

	// Warnings never make a report invalid.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
}

// Valid is true when the document decoded and passed both checks.
func (r *Report) Valid() bool {
	return r.ParseError == "" && len(r.FieldErrors) == 0 && len(r.StructureErrors) == 0
}

// Check validates doc and returns the findings of each check.
func (v *Validator) Check(doc record.Document) *Report {
	return v.check("chain.json", doc)
}

func (v *Validator) check(file string, doc record.Document) *Report {
	report := &Report{
		File:    file,
		ChainID: record.ChainKey(doc),
		Name:    doc.String(record.FieldName),
	}
	if kind, err := KindOf(doc); err == nil {
		report.Kind = kind
	}

	report.FieldErrors = fieldErrors(doc)
	report.StructureErrors = v.structure.check(file, doc)
	report.Warnings = warnings(report.Kind, doc)

	versionErr, versionWarn := checkVersion(doc)
	if versionErr != "" {
		report.StructureErrors = append(report.StructureErrors, versionErr)
	}
	if versionWarn != "" {
		report.Warnings = append(report.Warnings, versionWarn)
	}
	return report
}

// warnings flags values that are accepted but probably wrong.
func warnings(kind Kind, doc record.Document) []string {
	if kind != KindEvm {
		return nil
	}

	assets, _ := doc[record.FieldAssets].([]any)

	var out []string
	for i, raw := range assets {
		asset, _ := raw.(map[string]any)
		address, ok := asset["address"].(string)
		if !ok || address == "" {
			continue
		}
		if !common.IsHexAddress(address) {
			out = append(out, fmt.Sprintf("assets[%d].address: %q is not a hex address", i, address))
		}
	}
	return out
}

// checkVersion compares a pinned schema_version with Version. A different
// major version is an error; a newer version of the same major is a warning.
func checkVersion(doc record.Document) (errMsg, warning string) {
	raw, ok := doc[FieldSchemaVersion]
	if !ok {
		return "", ""
	}

	pinned, _ := raw.(string)
	if !semver.IsValid(pinned) {
		return fmt.Sprintf("%s: %v is not a version like %q", FieldSchemaVersion, raw, Version), ""
	}
	if semver.Major(pinned) != semver.Major(Version) {
		return fmt.Sprintf("%s: %s is not compatible with %s", FieldSchemaVersion, pinned, Version), ""
	}
	if semver.Compare(pinned, Version) > 0 {
		return "", fmt.Sprintf("%s: %s is newer than %s, unknown fields are not checked", FieldSchemaVersion, pinned, Version)
	}
	return "", ""
}

// ValidateDir validates every file in dir and returns one report per file,
// in file name order. A file that is not a JSON object gets an invalid
// report rather than an error. An unreadable directory is an error.
func (v *Validator) ValidateDir(ctx context.Context, dir string) ([]*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	reports := make([]*Report, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := loader.LoadFile(filepath.Join(dir, name))
		if err != nil {
			var parseErr *loader.ParseError
			if !errors.As(err, &parseErr) {
				return nil, err
			}
			reports = append(reports, &Report{File: name, ParseError: parseErr.Err.Error()})
			continue
		}
		reports = append(reports, v.check(name, doc))
	}
	return reports, nil
}

// ValidateDir validates a directory with a freshly compiled schema.
func ValidateDir(ctx context.Context, dir string) ([]*Report, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return v.ValidateDir(ctx, dir)
}
