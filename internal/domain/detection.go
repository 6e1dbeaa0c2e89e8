package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format identifies one of the supported detection-rule languages.
type Format string

const (
	FormatSplunk      Format = "splunk"
	FormatQRadar      Format = "qradar"
	FormatSigma       Format = "sigma"
	FormatKQL         Format = "kql"
	FormatPaloAlto    Format = "paloalto"
	FormatCrowdStrike Format = "crowdstrike"
	FormatYara        Format = "yara"
	FormatYaraL       Format = "yaral"
)

// Formats enumerates all supported detection formats, in display order.
var Formats = []Format{
	FormatSplunk, FormatQRadar, FormatSigma, FormatKQL,
	FormatPaloAlto, FormatCrowdStrike, FormatYara, FormatYaraL,
}

var (
	ErrEmptyContent  = errors.New("detection content cannot be empty")
	ErrInvalidFormat = errors.New("invalid detection format")
)

// Detection is a security detection rule handed to the engine for judgment.
// It is immutable once constructed; validators never write to it.
type Detection struct {
	ID        uuid.UUID      `json:"id"`
	Content   string         `json:"content"`
	Format    Format         `json:"format"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewDetection builds a Detection, rejecting empty content and unknown formats.
func NewDetection(content string, format Format) (*Detection, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	return &Detection{
		ID:        uuid.New(),
		Content:   content,
		Format:    format,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatSplunk, FormatQRadar, FormatSigma, FormatKQL,
		FormatPaloAlto, FormatCrowdStrike, FormatYara, FormatYaraL:
		return true
	default:
		return false
	}
}

func (f Format) String() string { return string(f) }

// ParseFormat maps a user-supplied format string to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, s)
	}
	return f, nil
}
