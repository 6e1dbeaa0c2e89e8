package domain

import (
	"fmt"
	"time"
)

// EngineVersion is reported in every result's metadata.
const EngineVersion = "1.0.0"

// DefaultMinConfidence is the score below which the orchestrator downgrades
// an otherwise-passing result to WARNING.
const DefaultMinConfidence = 95.0

// DefaultTimeout bounds a single validation call.
const DefaultTimeout = 30 * time.Second

// SplunkConfig tunes the Splunk SPL validator.
type SplunkConfig struct {
	StrictCIM        bool `yaml:"strict_cim"         json:"strict_cim"`
	MaxPipelineDepth int  `yaml:"max_pipeline_depth" json:"max_pipeline_depth"`
	RequireTimeRange bool `yaml:"require_time_range" json:"require_time_range"`
}

// YaraLConfig tunes the YARA-L validator.
type YaraLConfig struct {
	MaxConditionComplexity int `yaml:"max_condition_complexity" json:"max_condition_complexity"`
}

// CrowdStrikeConfig tunes the CrowdStrike validator.
type CrowdStrikeConfig struct {
	FormatVersion string `yaml:"format_version" json:"format_version"`
}

// EngineConfig holds engine-level settings, loaded from .rulegate.yaml.
type EngineConfig struct {
	Timeout       time.Duration `yaml:"-"              json:"timeout"`
	MinConfidence float64       `yaml:"min_confidence" json:"min_confidence"`

	Splunk      SplunkConfig      `yaml:"splunk"      json:"splunk"`
	YaraL       YaraLConfig       `yaml:"yaral"       json:"yaral"`
	CrowdStrike CrowdStrikeConfig `yaml:"crowdstrike" json:"crowdstrike"`
}

// DefaultConfig returns the engine defaults used when no .rulegate.yaml exists.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		Timeout:       DefaultTimeout,
		MinConfidence: DefaultMinConfidence,
		Splunk: SplunkConfig{
			MaxPipelineDepth: 10,
		},
		YaraL: YaraLConfig{
			MaxConditionComplexity: 100,
		},
		CrowdStrike: CrowdStrikeConfig{
			FormatVersion: "1.0",
		},
	}
}

// Validate catches out-of-range settings before the engine is built.
func (c EngineConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("min_confidence must be in [0,100], got %.2f", c.MinConfidence)
	}
	if c.Splunk.MaxPipelineDepth <= 0 {
		return fmt.Errorf("splunk.max_pipeline_depth must be positive, got %d", c.Splunk.MaxPipelineDepth)
	}
	if c.YaraL.MaxConditionComplexity <= 0 {
		return fmt.Errorf("yaral.max_condition_complexity must be positive, got %d", c.YaraL.MaxConditionComplexity)
	}
	if c.CrowdStrike.FormatVersion == "" {
		return fmt.Errorf("crowdstrike.format_version cannot be empty")
	}
	return nil
}
