package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rulegate/rulegate/internal/domain"
)

const fileName = ".rulegate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .rulegate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// rawConfig mirrors EngineConfig with the timeout as a duration string
// ("30s", "1m") so the file stays human-editable.
type rawConfig struct {
	Timeout string `yaml:"timeout"`
}

// Load reads .rulegate.yaml from path. Returns DefaultConfig if the file
// does not exist.
func (l *YAMLLoader) Load(path string) (domain.EngineConfig, error) {
	data, err := os.ReadFile(filepath.Join(path, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.EngineConfig{}, err
	}

	cfg := domain.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return domain.EngineConfig{}, fmt.Errorf("invalid timeout in %s: %w", fileName, err)
		}
		cfg.Timeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}

	return cfg, nil
}
