// Package validate implements the eight format-specific detection validators.
// Each validator runs a two-phase pipeline: a structural check (is the content
// parseable as the declared grammar at all?) followed by semantic checks over
// the parsed structure. A structural failure short-circuits with one HIGH
// structural issue and an ERROR-status result; bad input is never a hard
// error.
package validate

import (
	"context"
	"sort"

	"github.com/rulegate/rulegate/internal/domain"
)

// Validator is the contract every format validator implements. It populates
// and finalizes a ValidationResult for the detection; errors are reserved for
// engine-level problems, not content quality.
type Validator interface {
	Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error)
}

// newResult builds a result pre-stamped with the engine version.
func newResult(det *domain.Detection) *domain.ValidationResult {
	r := domain.NewValidationResult(det)
	r.Metadata.ValidatorVersion = domain.EngineVersion
	return r
}

// balancedDelimiters checks that (), [] and {} pair and nest correctly.
func balancedDelimiters(content string) bool {
	pairs := map[rune]rune{'(': ')', '[': ']', '{': '}'}
	var stack []rune

	for _, ch := range content {
		switch ch {
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 || pairs[stack[len(stack)-1]] != ch {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// balancedParens checks only () pairing, for condition expressions.
func balancedParens(s string) bool {
	depth := 0
	for _, ch := range s {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
