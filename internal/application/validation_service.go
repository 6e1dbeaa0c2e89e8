// Package application orchestrates detection validation across the format
// validator registry: lookup, timeout and cancellation handling, confidence
// enforcement, and batch fan-out.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
	"github.com/rulegate/rulegate/internal/domain/validate"
)

// ValidationService routes detections to the validator registered for their
// format. The registry is explicit: validators are registered at construction
// time and the set can be inspected or extended, which keeps tests free of
// global state.
type ValidationService struct {
	mu         sync.RWMutex
	validators map[domain.Format]validate.Validator

	cfg     domain.EngineConfig
	metrics domain.MetricsRecorder
}

// BatchOutcome carries the per-detection result of a batch call. Exactly one
// of Result and Err is set; Index correlates the outcome with the input slice.
type BatchOutcome struct {
	Index  int
	Result *domain.ValidationResult
	Err    error
}

// NewValidationService creates a service with an empty registry.
func NewValidationService(cfg domain.EngineConfig, metrics domain.MetricsRecorder) *ValidationService {
	return &ValidationService{
		validators: make(map[domain.Format]validate.Validator),
		cfg:        cfg,
		metrics:    metrics,
	}
}

// NewDefaultValidationService creates a service with all eight built-in
// format validators registered. The built-in set registers distinct formats,
// so a registration failure here is a programming error and panics.
func NewDefaultValidationService(cfg domain.EngineConfig, metrics domain.MetricsRecorder) *ValidationService {
	s := NewValidationService(cfg, metrics)
	flat := scoring.Default()

	mustRegister := func(format domain.Format, v validate.Validator) {
		if err := s.Register(format, v); err != nil {
			panic(err)
		}
	}

	mustRegister(domain.FormatSplunk, validate.NewSplunkValidator(flat, cfg.Splunk))
	mustRegister(domain.FormatQRadar, validate.NewQRadarValidator(flat))
	mustRegister(domain.FormatSigma, validate.NewSigmaValidator(flat))
	mustRegister(domain.FormatKQL, validate.NewKQLValidator(flat))
	mustRegister(domain.FormatPaloAlto, validate.NewPaloAltoValidator())
	mustRegister(domain.FormatCrowdStrike, validate.NewCrowdStrikeValidator(cfg.CrowdStrike))
	mustRegister(domain.FormatYara, validate.NewYaraValidator(flat))
	mustRegister(domain.FormatYaraL, validate.NewYaraLValidator(flat, cfg.YaraL))

	return s
}

// Register adds a validator for a format. Registering an empty format, a nil
// validator, or a format that already has a validator is rejected.
func (s *ValidationService) Register(format domain.Format, v validate.Validator) error {
	if format == "" {
		return &domain.RegistrationError{Format: format, Reason: "empty format"}
	}
	if v == nil {
		return &domain.RegistrationError{Format: format, Reason: "nil validator"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.validators[format]; exists {
		return &domain.RegistrationError{Format: format, Reason: "already registered"}
	}
	s.validators[format] = v
	return nil
}

// Formats returns the registered formats in registry order (unsorted).
func (s *ValidationService) Formats() []domain.Format {
	s.mu.RLock()
	defer s.mu.RUnlock()
	formats := make([]domain.Format, 0, len(s.validators))
	for f := range s.validators {
		formats = append(formats, f)
	}
	return formats
}

// Validate runs the detection through its format's validator under the
// configured timeout. Content problems come back inside the result; the
// returned error is reserved for engine failures such as an unsupported
// format, timeout, or cancellation.
func (s *ValidationService) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	return s.ValidateWithTimeout(ctx, det, s.cfg.Timeout)
}

// ValidateWithTimeout is Validate with a caller-chosen timeout for this call.
func (s *ValidationService) ValidateWithTimeout(ctx context.Context, det *domain.Detection, timeout time.Duration) (*domain.ValidationResult, error) {
	s.mu.RLock()
	v, ok := s.validators[det.Format]
	s.mu.RUnlock()
	if !ok {
		s.recordError(det.Format, "unsupported_format")
		return nil, &domain.UnsupportedFormatError{Format: det.Format}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result *domain.ValidationResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		result, err := v.Validate(ctx, det)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			s.recordError(det.Format, "timeout")
			return nil, &domain.TimeoutError{Format: det.Format, Timeout: timeout}
		}
		s.recordError(det.Format, "cancelled")
		return nil, &domain.CancelledError{Format: det.Format}
	case out := <-done:
		if out.err != nil {
			s.recordError(det.Format, "validator_failure")
			return nil, out.err
		}
		result := out.result
		result.Metadata.ValidationTimeMs = time.Since(start).Milliseconds()
		s.enforceMinConfidence(result)
		if s.metrics != nil {
			s.metrics.RecordValidation(det.Format, result.Status, time.Since(start))
		}
		return result, nil
	}
}

// ValidateBatch validates each detection concurrently and returns one outcome
// per input, index-correlated. A failure on one detection never affects the
// others and nothing propagates past this call.
func (s *ValidationService) ValidateBatch(ctx context.Context, dets []*domain.Detection) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(dets))

	var wg sync.WaitGroup
	for i, det := range dets {
		wg.Add(1)
		go func(i int, det *domain.Detection) {
			defer wg.Done()
			result, err := s.Validate(ctx, det)
			outcomes[i] = BatchOutcome{Index: i, Result: result, Err: err}
		}(i, det)
	}
	wg.Wait()

	return outcomes
}

// enforceMinConfidence downgrades results whose score falls below the
// configured floor. ERROR results are left alone; the floor only turns an
// optimistic status into WARNING, never the other way.
func (s *ValidationService) enforceMinConfidence(result *domain.ValidationResult) {
	if result.Status == domain.StatusError || result.ConfidenceScore >= s.cfg.MinConfidence {
		return
	}
	if result.Status == domain.StatusSuccess {
		result.Status = domain.StatusWarning
	}
	result.AddIssue(domain.ValidationIssue{
		Message:     fmt.Sprintf("Confidence score %.2f below minimum threshold %.2f", result.ConfidenceScore, s.cfg.MinConfidence),
		Severity:    domain.SeverityMedium,
		Location:    "confidence_check",
		IssueCode:   domain.IssueCodeLowConfidence,
		Remediation: "Resolve the reported issues to raise the confidence score",
	})
}

func (s *ValidationService) recordError(format domain.Format, kind string) {
	if s.metrics != nil {
		s.metrics.RecordEngineError(format, kind)
	}
}
