// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package validate

import (
	"regexp"
	"strings"

	"github.com/agorafed/agora/internal/errs"
)

// DefaultSlurPattern is the built-in slur filter.
const DefaultSlurPattern = `(?i)(fag(g|got|tard)?\b|cock\s?sucker(s|ing)?|ni((g{2,}|q)+|[gq]{2,})[e3r]+(s|z)?|mudslime?s?|kikes?|\bspi(c|k)s?\b|\bchinks?|gooks?|bitch(es|ing|y)?|whor(es?|ing)|\btr(a|@)nn?(y|ies?)|\b(b|re|r)tard(ed)?s?)`

const removed = "*removed*"

// SlurFilter detects and masks slurs.
type SlurFilter struct {
	re *regexp.Regexp
}

// NewSlurFilter compiles pattern. An empty pattern disables the filter.
func NewSlurFilter(pattern string) (*SlurFilter, error) {
	if pattern == "" {
		return &SlurFilter{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errs.Validationf(errs.CodeInvalidRequest, "slur pattern: %v", err)
	}
	return &SlurFilter{re: re}, nil
}

// DefaultSlurFilter returns a filter using DefaultSlurPattern.
func DefaultSlurFilter() *SlurFilter {
	return &SlurFilter{re: regexp.MustCompile(DefaultSlurPattern)}
}

// Check fails with the slurs code when text contains a slur.
func (f *SlurFilter) Check(text string) error {
	if found := f.Find(text); len(found) > 0 {
		return errs.Validationf(errs.CodeSlurs, "found: %s", strings.Join(found, ", "))
	}
	return nil
}

// Find returns the distinct slurs in text.
func (f *SlurFilter) Find(text string) []string {
	if f.re == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, m := range f.re.FindAllString(text, -1) {
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Remove masks every slur in text.
func (f *SlurFilter) Remove(text string) string {
	if f.re == nil {
		return text
	}
	return f.re.ReplaceAllString(text, removed)
}
