package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulegate/rulegate/internal/adapters/outbound/config"
	"github.com/rulegate/rulegate/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rulegate.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := writeConfig(t, `
timeout: 5s
min_confidence: 80
splunk:
  strict_cim: true
  max_pipeline_depth: 5
yaral:
  max_condition_complexity: 50
crowdstrike:
  format_version: "1.1"
`)

	cfg, err := config.New().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 80.0, cfg.MinConfidence)
	assert.True(t, cfg.Splunk.StrictCIM)
	assert.Equal(t, 5, cfg.Splunk.MaxPipelineDepth)
	assert.Equal(t, 50, cfg.YaraL.MaxConditionComplexity)
	assert.Equal(t, "1.1", cfg.CrowdStrike.FormatVersion)
}

func TestLoad_PartialOverrideKeepsDefaults(t *testing.T) {
	dir := writeConfig(t, "min_confidence: 90\n")

	cfg, err := config.New().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 90.0, cfg.MinConfidence)
	assert.Equal(t, domain.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 10, cfg.Splunk.MaxPipelineDepth)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	dir := writeConfig(t, "timeout: soon\n")

	_, err := config.New().Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsOutOfRange(t *testing.T) {
	dir := writeConfig(t, "min_confidence: 150\n")

	_, err := config.New().Load(dir)
	assert.Error(t, err)
}
