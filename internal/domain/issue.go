package domain

import "time"

// Severity grades how serious a single validation issue is.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// ValidationIssue is one reported problem with a rule. Issues are append-only
// within a validation run and never mutated after creation.
//
// Structural marks issues raised by the structural (parse) phase; a single
// HIGH structural issue forces the result into ERROR status regardless of the
// numeric score.
type ValidationIssue struct {
	Message     string    `json:"message"`
	Severity    Severity  `json:"severity"`
	Location    string    `json:"location"`
	IssueCode   string    `json:"issueCode"`
	Remediation string    `json:"remediation"`
	Structural  bool      `json:"structural,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// IssueCodeLowConfidence is the synthetic issue appended by the orchestrator
// when a result scores below the configured confidence threshold.
const IssueCodeLowConfidence = "LOW_CONFIDENCE"
