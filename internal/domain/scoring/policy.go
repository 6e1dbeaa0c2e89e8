// Package scoring holds the single confidence-scoring policy shared by every
// format validator. Validators collect issues; this package turns an issue set
// into a confidence score and a derived status. It is the only place those
// numbers live.
package scoring

import (
	"strings"

	"github.com/rulegate/rulegate/internal/domain"
)

// Flat severity penalties, applied when no field weight matches.
const (
	penaltyHigh   = 20.0
	penaltyMedium = 10.0
	penaltyLow    = 5.0
)

// Severity multipliers applied to per-field weights. A missing field costs
// its full weight; a malformed one costs half.
const (
	fieldFactorHigh   = 1.0
	fieldFactorMedium = 0.5
	fieldFactorLow    = 0.2
)

// Status thresholds on the clamped confidence score.
const (
	successThreshold = 95.0
	warningThreshold = 70.0
)

// Policy maps a set of issues to a confidence score in [0,100] and a status.
//
// FieldWeights, when set, override the flat severity table for issues whose
// location root matches a weighted field. Formats that grade by which required
// field failed (Palo Alto, CrowdStrike) construct their policy with a weight
// table; everyone else uses the flat default.
type Policy struct {
	FieldWeights map[string]float64
}

// Default returns the flat severity-weighted policy.
func Default() *Policy { return &Policy{} }

// FieldWeighted returns a policy that charges per-field weights where the
// issue location names a weighted field, falling back to the flat table.
func FieldWeighted(weights map[string]float64) *Policy {
	return &Policy{FieldWeights: weights}
}

// Score computes the confidence score and derived status for an issue set.
// Each issue subtracts a penalty; the score is clamped to [0,100]. A single
// HIGH structural issue forces ERROR regardless of the numeric score.
func (p *Policy) Score(issues []domain.ValidationIssue) (float64, domain.Status) {
	score := 100.0
	structuralFailure := false

	for _, iss := range issues {
		score -= p.penalty(iss)
		if iss.Structural && iss.Severity == domain.SeverityHigh {
			structuralFailure = true
		}
	}

	score = clamp(score)
	return score, statusFor(score, structuralFailure)
}

// Finalize runs the single scoring pass over a result, settling its
// confidence score and status. Called exactly once per validation.
func (p *Policy) Finalize(r *domain.ValidationResult) {
	r.ConfidenceScore, r.Status = p.Score(r.Issues)
}

func (p *Policy) penalty(iss domain.ValidationIssue) float64 {
	if w, ok := p.FieldWeights[locationRoot(iss.Location)]; ok {
		switch iss.Severity {
		case domain.SeverityHigh:
			return w * fieldFactorHigh
		case domain.SeverityMedium:
			return w * fieldFactorMedium
		default:
			return w * fieldFactorLow
		}
	}

	switch iss.Severity {
	case domain.SeverityHigh:
		return penaltyHigh
	case domain.SeverityMedium:
		return penaltyMedium
	default:
		return penaltyLow
	}
}

// locationRoot strips path and index suffixes so "mitre_attack[0].technique_id"
// and "fields.pid" resolve to their weighted root field.
func locationRoot(location string) string {
	if i := strings.IndexAny(location, ".["); i >= 0 {
		return location[:i]
	}
	return location
}

func statusFor(score float64, structuralFailure bool) domain.Status {
	if structuralFailure {
		return domain.StatusError
	}
	switch {
	case score >= successThreshold:
		return domain.StatusSuccess
	case score >= warningThreshold:
		return domain.StatusWarning
	default:
		return domain.StatusError
	}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
