package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the overall verdict of a validation run. It is always derived
// from the confidence score and the issue set by the scoring policy; no
// validator sets it directly.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// ResultMetadata carries context about how a result was produced.
type ResultMetadata struct {
	ValidationTimeMs int64          `json:"validationTimeMs"`
	ValidatorVersion string         `json:"validatorVersion"`
	ValidatorConfig  map[string]any `json:"validatorConfig,omitempty"`
	CommitHash       string         `json:"commitHash,omitempty"`
}

// ValidationResult is the engine's judgment of a single detection. It is
// mutated only through AddIssue during one validation call, finalized by one
// scoring pass, and treated as an immutable snapshot afterwards.
type ValidationResult struct {
	ID                    uuid.UUID         `json:"id"`
	DetectionID           uuid.UUID         `json:"detectionId"`
	Format                Format            `json:"format"`
	Status                Status            `json:"status"`
	ConfidenceScore       float64           `json:"confidenceScore"`
	Issues                []ValidationIssue `json:"issues"`
	FormatSpecificDetails map[string]any    `json:"formatSpecificDetails"`
	Metadata              ResultMetadata    `json:"metadata"`
	CreatedAt             time.Time         `json:"createdAt"`
}

// NewValidationResult creates an empty result for the given detection.
// It starts at full confidence; the scoring pass settles the final values.
func NewValidationResult(det *Detection) *ValidationResult {
	return &ValidationResult{
		ID:                    uuid.New(),
		DetectionID:           det.ID,
		Format:                det.Format,
		Status:                StatusSuccess,
		ConfidenceScore:       100.0,
		Issues:                make([]ValidationIssue, 0),
		FormatSpecificDetails: make(map[string]any),
		CreatedAt:             time.Now().UTC(),
	}
}

// AddIssue appends an issue, stamping its timestamp if unset. Scores and
// status are not touched here; that is the scoring policy's job.
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	if issue.Timestamp.IsZero() {
		issue.Timestamp = time.Now().UTC()
	}
	r.Issues = append(r.Issues, issue)
}

// HasStructuralFailure reports whether any HIGH structural issue was recorded.
func (r *ValidationResult) HasStructuralFailure() bool {
	for _, iss := range r.Issues {
		if iss.Structural && iss.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// SeverityCounts tallies issues by severity, for report summaries.
func (r *ValidationResult) SeverityCounts() map[Severity]int {
	counts := map[Severity]int{
		SeverityHigh:   0,
		SeverityMedium: 0,
		SeverityLow:    0,
	}
	for _, iss := range r.Issues {
		counts[iss.Severity]++
	}
	return counts
}
