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

func TestQRadarValidator_ValidQuery(t *testing.T) {
	content := "SELECT sourceip, COUNT(*) FROM events WHERE magnitude GROUP BY sourceip"
	v := validate.NewQRadarValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatQRadar))
	require.NoError(t, err)

	assert.Empty(t, result.Issues)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, 100.0, result.ConfidenceScore)
}

func TestQRadarValidator_FromAfterWhere(t *testing.T) {
	content := "SELECT a FROM events WHERE x=1 GROUP BY a FROM events"
	v := validate.NewQRadarValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatQRadar))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, "QR002", issue.IssueCode)
	assert.Equal(t, domain.SeverityHigh, issue.Severity)
	assert.Contains(t, issue.Message, "Invalid clause ordering")
	assert.LessOrEqual(t, result.ConfidenceScore, 80.0)
}

func TestQRadarValidator_MissingSelectFrom(t *testing.T) {
	v := validate.NewQRadarValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, "DELETE FROM events", domain.FormatQRadar))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "QR001", result.Issues[0].IssueCode)
	assert.True(t, result.Issues[0].Structural)
	assert.Equal(t, domain.StatusError, result.Status)
}

func TestQRadarValidator_InvalidFieldName(t *testing.T) {
	content := "SELECT source-ip FROM events"
	v := validate.NewQRadarValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatQRadar))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "QR003", result.Issues[0].IssueCode)
	assert.Contains(t, result.Issues[0].Message, "source-ip")
}

func TestQRadarValidator_UnknownFunction(t *testing.T) {
	content := "SELECT MEDIAN(magnitude) FROM events"
	v := validate.NewQRadarValidator(scoring.Default())

	result, err := v.Validate(context.Background(), mustDetection(t, content, domain.FormatQRadar))
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "QR004", result.Issues[0].IssueCode)
	assert.Equal(t, domain.SeverityMedium, result.Issues[0].Severity)
	assert.Equal(t, domain.StatusWarning, result.Status)
}
