package validate

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

// sigmaRule mirrors the SIGMA top-level schema. Decoding with KnownFields
// rejects any top-level key outside this set.
type sigmaRule struct {
	Title          string         `yaml:"title"`
	ID             string         `yaml:"id"`
	Status         string         `yaml:"status"`
	Description    string         `yaml:"description"`
	References     []string       `yaml:"references"`
	Author         string         `yaml:"author"`
	Date           string         `yaml:"date"`
	Modified       string         `yaml:"modified"`
	Tags           []string       `yaml:"tags"`
	Logsource      map[string]any `yaml:"logsource"`
	Detection      map[string]any `yaml:"detection"`
	Fields         []string       `yaml:"fields"`
	FalsePositives []string       `yaml:"falsepositives"`
	Level          string         `yaml:"level"`
	Related        []any          `yaml:"related"`
	License        string         `yaml:"license"`
}

var sigmaLogsourceFields = []string{"product", "service"}

// SigmaValidator judges SIGMA YAML detection rules.
type SigmaValidator struct {
	policy *scoring.Policy
}

func NewSigmaValidator(policy *scoring.Policy) *SigmaValidator {
	return &SigmaValidator{policy: policy}
}

func (v *SigmaValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)

	// Structural phase: strict YAML decode, unknown top-level keys rejected.
	rule, err := decodeSigma(det.Content)
	if err != nil {
		result.AddIssue(domain.ValidationIssue{
			Message:     fmt.Sprintf("Invalid YAML structure: %v", err),
			Severity:    domain.SeverityHigh,
			Location:    "yaml_structure",
			IssueCode:   "SIGMA001",
			Remediation: "Ensure the detection is valid YAML using only recognized SIGMA top-level keys",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	v.checkRequiredFields(rule, result)
	if rule.Logsource != nil {
		v.checkLogsource(rule.Logsource, result)
	}
	if rule.Detection != nil {
		v.checkDetection(rule.Detection, result)
	}

	result.FormatSpecificDetails["title"] = rule.Title
	result.FormatSpecificDetails["search_identifiers"] = searchIdentifierCount(rule.Detection)

	v.policy.Finalize(result)
	return result, nil
}

func decodeSigma(content string) (*sigmaRule, error) {
	dec := yaml.NewDecoder(strings.NewReader(content))
	dec.KnownFields(true)

	var rule sigmaRule
	if err := dec.Decode(&rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// checkRequiredFields flags absent top-level fields. A SIGMA rule without its
// required skeleton is structurally unsound, so these force ERROR status.
func (v *SigmaValidator) checkRequiredFields(rule *sigmaRule, result *domain.ValidationResult) {
	missing := func(field string) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing required field: " + field,
			Severity:    domain.SeverityHigh,
			Location:    field,
			IssueCode:   "SIGMA003",
			Remediation: fmt.Sprintf("Add the required %s field to the detection", field),
			Structural:  true,
		})
	}

	if rule.Title == "" {
		missing("title")
	}
	if rule.Description == "" {
		missing("description")
	}
	if rule.Logsource == nil {
		missing("logsource")
	}
	if rule.Detection == nil {
		missing("detection")
	}
}

func (v *SigmaValidator) checkLogsource(logsource map[string]any, result *domain.ValidationResult) {
	for _, field := range sigmaLogsourceFields {
		if val, ok := logsource[field]; ok && val != "" {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing logsource " + field + " field",
			Severity:    domain.SeverityMedium,
			Location:    "logsource." + field,
			IssueCode:   "SIGMA004",
			Remediation: fmt.Sprintf("Specify the %s in the logsource configuration", field),
		})
	}
}

func (v *SigmaValidator) checkDetection(detection map[string]any, result *domain.ValidationResult) {
	if condition, ok := detection["condition"]; !ok || isEmptyValue(condition) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing or empty detection condition",
			Severity:    domain.SeverityHigh,
			Location:    "detection.condition",
			IssueCode:   "SIGMA005",
			Remediation: "Add a valid detection condition",
		})
	}

	identifiers := 0
	for key, value := range detection {
		if key == "condition" || key == "timeframe" {
			continue
		}
		identifiers++
		v.checkSearchIdentifier(key, value, result)
	}

	if identifiers == 0 {
		result.AddIssue(domain.ValidationIssue{
			Message:     "No search identifiers found in detection",
			Severity:    domain.SeverityHigh,
			Location:    "detection",
			IssueCode:   "SIGMA006",
			Remediation: "Add at least one search identifier with detection criteria",
		})
	}
}

func (v *SigmaValidator) checkSearchIdentifier(key string, value any, result *domain.ValidationResult) {
	criteria, ok := value.(map[string]any)
	if !ok {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid search identifier format: " + key,
			Severity:    domain.SeverityMedium,
			Location:    "detection." + key,
			IssueCode:   "SIGMA007",
			Remediation: "Ensure the search identifier contains valid field mappings",
		})
		return
	}

	if len(criteria) == 0 {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Empty search criteria in identifier: " + key,
			Severity:    domain.SeverityMedium,
			Location:    "detection." + key,
			IssueCode:   "SIGMA008",
			Remediation: "Add search criteria to the identifier",
		})
	}
}

func searchIdentifierCount(detection map[string]any) int {
	count := 0
	for key := range detection {
		if key != "condition" && key != "timeframe" {
			count++
		}
	}
	return count
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
