package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
	"github.com/rulegate/rulegate/internal/domain/validate"
)

const sigmaMinimalRule = `title: Failed Logon Attempts
description: Detects repeated failed logons
logsource:
  product: windows
  service: security
detection:
  selection:
    EventID: 4625
  condition: selection
`

func mustDetection(t *testing.T, content string, format domain.Format) *domain.Detection {
	t.Helper()
	det, err := domain.NewDetection(content, format)
	require.NoError(t, err)
	return det
}

func TestSigmaValidator_MinimalValidRule(t *testing.T) {
	v := validate.NewSigmaValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, sigmaMinimalRule, domain.FormatSigma))
	require.NoError(t, err)

	assert.Empty(t, result.Issues)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, 100.0, result.ConfidenceScore)
}

func TestSigmaValidator_MissingDetection(t *testing.T) {
	content := `title: Failed Logon Attempts
description: Detects repeated failed logons
logsource:
  product: windows
  service: security
`
	v := validate.NewSigmaValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatSigma))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "Missing required field: detection", result.Issues[0].Message)
	assert.Equal(t, domain.SeverityHigh, result.Issues[0].Severity)
	assert.Equal(t, domain.StatusError, result.Status)
}

func TestSigmaValidator_InvalidYAML(t *testing.T) {
	v := validate.NewSigmaValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, "title: [unclosed", domain.FormatSigma))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "SIGMA001", result.Issues[0].IssueCode)
	assert.True(t, result.Issues[0].Structural)
	assert.Equal(t, domain.StatusError, result.Status)
}

func TestSigmaValidator_UnknownTopLevelKey(t *testing.T) {
	content := sigmaMinimalRule + "detection_extra: true\n"
	v := validate.NewSigmaValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatSigma))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "SIGMA001", result.Issues[0].IssueCode)
	assert.Equal(t, domain.StatusError, result.Status)
}

func TestSigmaValidator_LogsourceDetails(t *testing.T) {
	tests := []struct {
		name      string
		logsource string
		wantCode  string
	}{
		{
			name:      "missing product",
			logsource: "logsource:\n  service: security\n",
			wantCode:  "SIGMA004",
		},
		{
			name:      "missing service",
			logsource: "logsource:\n  product: windows\n",
			wantCode:  "SIGMA004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "title: t\ndescription: d\n" + tt.logsource +
				"detection:\n  selection:\n    EventID: 4625\n  condition: selection\n"
			v := validate.NewSigmaValidator(scoring.Default())

			result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatSigma))
			require.NoError(t, err)

			require.Len(t, result.Issues, 1)
			assert.Equal(t, tt.wantCode, result.Issues[0].IssueCode)
			assert.Equal(t, domain.SeverityMedium, result.Issues[0].Severity)
			assert.Equal(t, domain.StatusWarning, result.Status)
		})
	}
}

func TestSigmaValidator_DetectionIssues(t *testing.T) {
	tests := []struct {
		name      string
		detection string
		wantCode  string
		wantSev   domain.Severity
	}{
		{
			name:      "empty condition",
			detection: "detection:\n  selection:\n    EventID: 4625\n  condition: \"\"\n",
			wantCode:  "SIGMA005",
			wantSev:   domain.SeverityHigh,
		},
		{
			name:      "no search identifiers",
			detection: "detection:\n  condition: selection\n",
			wantCode:  "SIGMA006",
			wantSev:   domain.SeverityHigh,
		},
		{
			name:      "scalar search identifier",
			detection: "detection:\n  selection: just-a-string\n  condition: selection\n",
			wantCode:  "SIGMA007",
			wantSev:   domain.SeverityMedium,
		},
		{
			name:      "empty search criteria",
			detection: "detection:\n  selection: {}\n  condition: selection\n",
			wantCode:  "SIGMA008",
			wantSev:   domain.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "title: t\ndescription: d\nlogsource:\n  product: windows\n  service: security\n" + tt.detection
			v := validate.NewSigmaValidator(scoring.Default())

			result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatSigma))
			require.NoError(t, err)

			require.Len(t, result.Issues, 1)
			assert.Equal(t, tt.wantCode, result.Issues[0].IssueCode)
			assert.Equal(t, tt.wantSev, result.Issues[0].Severity)
		})
	}
}
