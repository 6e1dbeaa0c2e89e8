package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

func issue(sev domain.Severity, location string, structural bool) domain.ValidationIssue {
	return domain.ValidationIssue{
		Message:    "test issue",
		Severity:   sev,
		Location:   location,
		IssueCode:  "TEST001",
		Structural: structural,
	}
}

func TestScore_NoIssues(t *testing.T) {
	score, status := scoring.Default().Score(nil)

	assert.Equal(t, 100.0, score)
	assert.Equal(t, domain.StatusSuccess, status)
}

func TestScore_FlatSeverityPenalties(t *testing.T) {
	tests := []struct {
		name      string
		issues    []domain.ValidationIssue
		wantScore float64
	}{
		{"one high", []domain.ValidationIssue{issue(domain.SeverityHigh, "x", false)}, 80.0},
		{"one medium", []domain.ValidationIssue{issue(domain.SeverityMedium, "x", false)}, 90.0},
		{"one low", []domain.ValidationIssue{issue(domain.SeverityLow, "x", false)}, 95.0},
		{"mixed", []domain.ValidationIssue{
			issue(domain.SeverityHigh, "a", false),
			issue(domain.SeverityMedium, "b", false),
			issue(domain.SeverityLow, "c", false),
		}, 65.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := scoring.Default().Score(tt.issues)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestScore_StatusThresholds(t *testing.T) {
	// 95 -> SUCCESS boundary (one low issue).
	score, status := scoring.Default().Score([]domain.ValidationIssue{
		issue(domain.SeverityLow, "x", false),
	})
	assert.Equal(t, 95.0, score)
	assert.Equal(t, domain.StatusSuccess, status)

	// 90 -> WARNING.
	_, status = scoring.Default().Score([]domain.ValidationIssue{
		issue(domain.SeverityMedium, "x", false),
	})
	assert.Equal(t, domain.StatusWarning, status)

	// 60 -> ERROR.
	_, status = scoring.Default().Score([]domain.ValidationIssue{
		issue(domain.SeverityHigh, "a", false),
		issue(domain.SeverityHigh, "b", false),
	})
	assert.Equal(t, domain.StatusError, status)
}

func TestScore_StructuralFailureForcesError(t *testing.T) {
	// A lone HIGH structural issue scores 80, which would otherwise be WARNING.
	score, status := scoring.Default().Score([]domain.ValidationIssue{
		issue(domain.SeverityHigh, "yaml_structure", true),
	})

	assert.Equal(t, 80.0, score)
	assert.Equal(t, domain.StatusError, status)
}

func TestScore_ClampedToZero(t *testing.T) {
	issues := make([]domain.ValidationIssue, 6)
	for i := range issues {
		issues[i] = issue(domain.SeverityHigh, "x", false)
	}

	score, status := scoring.Default().Score(issues)

	assert.Equal(t, 0.0, score)
	assert.Equal(t, domain.StatusError, status)
}

func TestScore_Monotonic(t *testing.T) {
	issues := []domain.ValidationIssue{}
	prev := 101.0

	for _, sev := range []domain.Severity{
		domain.SeverityLow, domain.SeverityHigh, domain.SeverityMedium,
		domain.SeverityHigh, domain.SeverityLow,
	} {
		issues = append(issues, issue(sev, "x", false))
		score, _ := scoring.Default().Score(issues)
		assert.LessOrEqual(t, score, prev, "adding an issue must never raise the score")
		prev = score
	}
}

func TestScore_FieldWeights(t *testing.T) {
	policy := scoring.FieldWeighted(map[string]float64{
		"log_type":     15.0,
		"mitre_attack": 10.0,
	})

	// Missing weighted field: full weight.
	score, _ := policy.Score([]domain.ValidationIssue{
		issue(domain.SeverityHigh, "log_type", false),
	})
	assert.Equal(t, 85.0, score)

	// Malformed weighted field: half weight.
	score, _ = policy.Score([]domain.ValidationIssue{
		issue(domain.SeverityMedium, "log_type", false),
	})
	assert.Equal(t, 92.5, score)

	// Location with index and path suffix resolves to its root field.
	score, _ = policy.Score([]domain.ValidationIssue{
		issue(domain.SeverityMedium, "mitre_attack[0].technique_id", false),
	})
	assert.Equal(t, 95.0, score)

	// Unweighted location falls back to the flat table.
	score, _ = policy.Score([]domain.ValidationIssue{
		issue(domain.SeverityHigh, "something_else", false),
	})
	assert.Equal(t, 80.0, score)
}

func TestFinalize_SettlesResult(t *testing.T) {
	det, err := domain.NewDetection("rule x {}", domain.FormatYara)
	assert.NoError(t, err)

	result := domain.NewValidationResult(det)
	result.AddIssue(issue(domain.SeverityMedium, "strings.$a", false))

	scoring.Default().Finalize(result)

	assert.Equal(t, 90.0, result.ConfidenceScore)
	assert.Equal(t, domain.StatusWarning, result.Status)
}
