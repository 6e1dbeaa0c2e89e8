package domain

import "time"

// ConfigLoader loads engine configuration for a working directory.
type ConfigLoader interface {
	Load(path string) (EngineConfig, error)
}

// MetricsRecorder receives one observation per completed validation.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	RecordValidation(format Format, status Status, duration time.Duration)
	RecordEngineError(format Format, kind string)
}

// GitInfo resolves repository provenance for rule files under version control.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
}
