package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/adapters/outbound/metrics"
	"github.com/rulegate/rulegate/internal/domain"
)

func TestRecordValidation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	rec.RecordValidation(domain.FormatSigma, domain.StatusSuccess, 5*time.Millisecond)
	rec.RecordValidation(domain.FormatSigma, domain.StatusSuccess, 7*time.Millisecond)
	rec.RecordValidation(domain.FormatYara, domain.StatusError, time.Millisecond)

	// One series per format/status pair.
	count, err := testutil.GatherAndCount(reg, "rulegate_validations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "rulegate_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordEngineError(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	rec.RecordEngineError(domain.FormatKQL, "timeout")
	rec.RecordEngineError(domain.FormatKQL, "timeout")
	rec.RecordEngineError(domain.FormatKQL, "cancelled")

	count, err := testutil.GatherAndCount(reg, "rulegate_engine_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
