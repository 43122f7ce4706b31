/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package vocab holds the reference vocabulary that question records are
// validated against: the chart of accounts, boilerplate phrases and the
// known transaction patterns.
package vocab

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
	"gopkg.in/yaml.v3"

	"bokiquiz.dev/qscan/fs"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrUnsupportedFormat is returned for vocabulary files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported vocabulary format")

// Side is the side of an entry an account normally sits on.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
	Both   Side = "both"
)

// Label returns the Japanese name of the side.
func (s Side) Label() string {
	switch s {
	case Debit:
		return "借方"
	case Credit:
		return "貸方"
	}
	return string(s)
}

// Account describes one entry of the chart of accounts.
type Account struct {
	Category   string `yaml:"category" json:"category"`
	Code       string `yaml:"code" json:"code"`
	NormalSide Side   `yaml:"normalSide" json:"normalSide"`
}

// TransactionPattern is a debit/credit account pair whose question text is
// expected to contain every keyword.
type TransactionPattern struct {
	Name     string   `yaml:"name" json:"name"`
	Accounts []string `yaml:"accounts" json:"accounts"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Matches reports whether both accounts belong to the pattern.
func (p TransactionPattern) Matches(debit, credit string) bool {
	return slices.Contains(p.Accounts, debit) && slices.Contains(p.Accounts, credit)
}

// Vocabulary is a versioned reference vocabulary.
type Vocabulary struct {
	Version             int                `yaml:"version" json:"version"`
	Accounts            map[string]Account `yaml:"accounts" json:"accounts"`
	Aliases             map[string]string  `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	GenericExplanations []string           `yaml:"genericExplanations" json:"genericExplanations"`
	GenericDescriptions []string           `yaml:"genericDescriptions" json:"genericDescriptions"`
	// InsufficientReferences are phrases that defer question details to
	// material the record does not carry.
	InsufficientReferences []string             `yaml:"insufficientReferences" json:"insufficientReferences"`
	TransactionPatterns    []TransactionPattern `yaml:"transactionPatterns" json:"transactionPatterns"`
	SpecialCaseAccounts    []string             `yaml:"specialCaseAccounts" json:"specialCaseAccounts"`
	SpecialCaseKeywords    []string             `yaml:"specialCaseKeywords" json:"specialCaseKeywords"`
	// ReviewedMarker in an explanation suppresses the boilerplate check.
	ReviewedMarker string `yaml:"reviewedMarker,omitempty" json:"reviewedMarker,omitempty"`

	index map[string]string
}

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	v, err := Parse(defaultYAML, ".yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// Load reads a vocabulary file. JSON files may contain comments and
// trailing commas.
func Load(filesystem fs.FileSystem, path string) (*Vocabulary, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	v, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse decodes vocabulary data in the format named by ext.
func Parse(data []byte, ext string) (*Vocabulary, error) {
	v := &Vocabulary{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return nil, err
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	v.reindex()
	return v, nil
}

// Merge returns a vocabulary holding v overlaid with other. Accounts and
// aliases in other win; phrase lists are unioned.
func (v *Vocabulary) Merge(other *Vocabulary) *Vocabulary {
	out := &Vocabulary{
		Version:        max(v.Version, other.Version),
		Accounts:       make(map[string]Account, len(v.Accounts)+len(other.Accounts)),
		Aliases:        make(map[string]string),
		ReviewedMarker: v.ReviewedMarker,
	}
	if other.ReviewedMarker != "" {
		out.ReviewedMarker = other.ReviewedMarker
	}
	for _, src := range []*Vocabulary{v, other} {
		for name, acct := range src.Accounts {
			out.Accounts[name] = acct
		}
		for alias, name := range src.Aliases {
			out.Aliases[alias] = name
		}
	}
	out.GenericExplanations = union(v.GenericExplanations, other.GenericExplanations)
	out.GenericDescriptions = union(v.GenericDescriptions, other.GenericDescriptions)
	out.InsufficientReferences = union(v.InsufficientReferences, other.InsufficientReferences)
	out.SpecialCaseAccounts = union(v.SpecialCaseAccounts, other.SpecialCaseAccounts)
	out.SpecialCaseKeywords = union(v.SpecialCaseKeywords, other.SpecialCaseKeywords)

	out.TransactionPatterns = slices.Clone(v.TransactionPatterns)
	for _, p := range other.TransactionPatterns {
		i := slices.IndexFunc(out.TransactionPatterns, func(q TransactionPattern) bool { return q.Name == p.Name })
		if i >= 0 {
			out.TransactionPatterns[i] = p
		} else {
			out.TransactionPatterns = append(out.TransactionPatterns, p)
		}
	}
	out.reindex()
	return out
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Normalize folds an account name for lookup: NFKC, narrow ASCII and no
// surrounding or embedded spaces.
func Normalize(name string) string {
	s := width.Fold.String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(s), "")
}

func (v *Vocabulary) reindex() {
	v.index = v.buildIndex()
}

// buildIndex maps normalized account names and aliases to canonical names.
func (v *Vocabulary) buildIndex() map[string]string {
	index := make(map[string]string, len(v.Accounts)+len(v.Aliases))
	for name := range v.Accounts {
		index[Normalize(name)] = name
	}
	for alias, name := range v.Aliases {
		if _, ok := v.Accounts[name]; ok {
			index[Normalize(alias)] = name
		}
	}
	return index
}

// Lookup returns the canonical name and definition of an account. It never
// writes to v, so a shared vocabulary may be read from many goroutines.
// Vocabularies from Parse, Default, Load and Merge carry a prebuilt index;
// others build a throwaway one per call.
func (v *Vocabulary) Lookup(name string) (string, Account, bool) {
	index := v.index
	if index == nil {
		index = v.buildIndex()
	}
	canonical, ok := index[Normalize(name)]
	if !ok {
		return "", Account{}, false
	}
	return canonical, v.Accounts[canonical], true
}

// IsSpecialAccount reports whether name is exempt from the normal-side check.
func (v *Vocabulary) IsSpecialAccount(name string) bool {
	canonical, _, ok := v.Lookup(name)
	if !ok {
		canonical = name
	}
	return slices.Contains(v.SpecialCaseAccounts, canonical)
}

// HasSpecialKeyword reports whether text contains a keyword that marks the
// question as a correction, return or allowance.
func (v *Vocabulary) HasSpecialKeyword(text string) bool {
	for _, k := range v.SpecialCaseKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// GenericExplanation returns the first boilerplate phrase found in text.
func (v *Vocabulary) GenericExplanation(text string) (string, bool) {
	for _, p := range v.GenericExplanations {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// InsufficientReference returns the first phrase in text that refers the
// reader to details missing from the question.
func (v *Vocabulary) InsufficientReference(text string) (string, bool) {
	for _, p := range v.InsufficientReferences {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// IsGenericDescription reports whether a ledger description is empty or a
// placeholder.
func (v *Vocabulary) IsGenericDescription(desc string) bool {
	desc = strings.TrimSpace(desc)
	return desc == "" || slices.Contains(v.GenericDescriptions, desc)
}

// Pattern returns the transaction pattern matching a debit/credit pair.
func (v *Vocabulary) Pattern(debit, credit string) (TransactionPattern, bool) {
	for _, p := range v.TransactionPatterns {
		if p.Matches(debit, credit) {
			return p, true
		}
	}
	return TransactionPattern{}, false
}
