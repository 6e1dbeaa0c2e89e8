package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/domain"
)

func TestEngineErrors_Unwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"unsupported format", &domain.UnsupportedFormatError{Format: "snort"}, domain.ErrUnsupportedFormat},
		{"registration", &domain.RegistrationError{Format: domain.FormatYara, Reason: "nil validator"}, domain.ErrRegistration},
		{"timeout", &domain.TimeoutError{Format: domain.FormatYara, Timeout: time.Second}, domain.ErrTimeout},
		{"cancelled", &domain.CancelledError{Format: domain.FormatYara}, domain.ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestEngineErrors_Distinct(t *testing.T) {
	err := &domain.TimeoutError{Format: domain.FormatSigma, Timeout: time.Second}
	assert.NotErrorIs(t, err, domain.ErrCancelled)
	assert.NotErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestUnsupportedFormatError_As(t *testing.T) {
	var err error = &domain.UnsupportedFormatError{Format: "snort"}

	var ufe *domain.UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, domain.Format("snort"), ufe.Format)
}
