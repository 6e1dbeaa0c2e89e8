package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

var (
	crowdStrikeFieldNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,63}$`)
	mitreTechniqueRe       = regexp.MustCompile(`^T\d{4}(\.\d{3})?$`)
)

var crowdStrikeEventTypes = []string{
	"Process", "Network", "File", "Registry",
	"DNS", "Authentication", "Behavioral",
}

var crowdStrikeSeverities = []string{"Low", "Medium", "High", "Critical"}

var crowdStrikeRequiredFields = []string{
	"event_type", "detection_name", "severity",
	"description", "mitre_attack",
}

// CrowdStrikeFieldWeights weights penalties by which part of the detection
// failed. The classification fields outweigh the descriptive ones.
var CrowdStrikeFieldWeights = map[string]float64{
	"format_version": 15,
	"event_type":     15,
	"detection_name": 10,
	"severity":       10,
	"description":    5,
	"mitre_attack":   12,
	"fields":         10,
}

// CrowdStrikeValidator judges CrowdStrike JSON detection documents.
type CrowdStrikeValidator struct {
	policy *scoring.Policy
	cfg    domain.CrowdStrikeConfig
}

func NewCrowdStrikeValidator(cfg domain.CrowdStrikeConfig) *CrowdStrikeValidator {
	return &CrowdStrikeValidator{
		policy: scoring.FieldWeighted(CrowdStrikeFieldWeights),
		cfg:    cfg,
	}
}

func (v *CrowdStrikeValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	result.Metadata.ValidatorConfig = map[string]any{
		"formatVersion": v.cfg.FormatVersion,
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(det.Content), &content); err != nil {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid JSON format in detection content",
			Severity:    domain.SeverityHigh,
			Location:    "content",
			IssueCode:   "CS001",
			Remediation: "Ensure detection content is valid JSON",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	v.checkFormatVersion(content, result)
	v.checkRequiredFields(content, result)
	v.checkEventType(content, result)
	v.checkSeverity(content, result)
	v.checkFieldMappings(content, result)
	v.checkMitreMapping(content, result)

	if name, ok := content["detection_name"].(string); ok {
		result.FormatSpecificDetails["detection_name"] = name
	}

	v.policy.Finalize(result)
	return result, nil
}

func (v *CrowdStrikeValidator) checkFormatVersion(content map[string]any, result *domain.ValidationResult) {
	version, ok := content["format_version"].(string)
	if ok && version == v.cfg.FormatVersion {
		return
	}
	message := "Missing format version"
	if ok {
		message = "Unsupported format version: " + version
	}
	result.AddIssue(domain.ValidationIssue{
		Message:     message,
		Severity:    domain.SeverityHigh,
		Location:    "format_version",
		IssueCode:   "CS002",
		Remediation: "Update detection to use format version " + v.cfg.FormatVersion,
	})
}

func (v *CrowdStrikeValidator) checkRequiredFields(content map[string]any, result *domain.ValidationResult) {
	for _, field := range crowdStrikeRequiredFields {
		if value, exists := content[field]; exists && value != nil {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing required field: " + field,
			Severity:    domain.SeverityHigh,
			Location:    field,
			IssueCode:   "CS005",
			Remediation: "Add the required field: " + field,
		})
	}
}

func (v *CrowdStrikeValidator) checkEventType(content map[string]any, result *domain.ValidationResult) {
	eventType, ok := content["event_type"].(string)
	if !ok || containsString(crowdStrikeEventTypes, eventType) {
		return
	}
	result.AddIssue(domain.ValidationIssue{
		Message:     "Invalid event type: " + eventType,
		Severity:    domain.SeverityHigh,
		Location:    "event_type",
		IssueCode:   "CS003",
		Remediation: "Use one of the valid event types: " + strings.Join(crowdStrikeEventTypes, ", "),
	})
}

func (v *CrowdStrikeValidator) checkSeverity(content map[string]any, result *domain.ValidationResult) {
	severity, ok := content["severity"].(string)
	if !ok || containsString(crowdStrikeSeverities, severity) {
		return
	}
	result.AddIssue(domain.ValidationIssue{
		Message:     "Invalid severity level: " + severity,
		Severity:    domain.SeverityHigh,
		Location:    "severity",
		IssueCode:   "CS004",
		Remediation: "Use one of the valid severity levels: " + strings.Join(crowdStrikeSeverities, ", "),
	})
}

func (v *CrowdStrikeValidator) checkFieldMappings(content map[string]any, result *domain.ValidationResult) {
	fields, ok := content["fields"].(map[string]any)
	if !ok {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing or invalid fields section",
			Severity:    domain.SeverityHigh,
			Location:    "fields",
			IssueCode:   "CS006",
			Remediation: "Add a valid fields section with field mappings",
		})
		return
	}

	for name, value := range fields {
		if !crowdStrikeFieldNameRe.MatchString(name) {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Invalid field name format: " + name,
				Severity:    domain.SeverityMedium,
				Location:    "fields." + name,
				IssueCode:   "CS007",
				Remediation: "Field names must start with a letter and contain only letters, numbers, and underscores",
			})
		}
		v.checkFieldValueType(name, value, result)
	}
}

// checkFieldValueType walks the value recursively. JSON decoding yields
// string, float64, bool, []any, and map[string]any for well-formed values.
func (v *CrowdStrikeValidator) checkFieldValueType(name string, value any, result *domain.ValidationResult) {
	switch val := value.(type) {
	case string, float64, bool:
	case []any:
		for i, elem := range val {
			v.checkFieldValueType(fmt.Sprintf("%s[%d]", name, i), elem, result)
		}
	case map[string]any:
		for key, nested := range val {
			v.checkFieldValueType(name+"."+key, nested, result)
		}
	default:
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid field value type for " + name,
			Severity:    domain.SeverityMedium,
			Location:    "fields." + name,
			IssueCode:   "CS008",
			Remediation: "Use only supported data types: string, number, boolean, array, or object",
		})
	}
}

func (v *CrowdStrikeValidator) checkMitreMapping(content map[string]any, result *domain.ValidationResult) {
	mitre, ok := content["mitre_attack"].([]any)
	if !ok {
		return
	}
	for i, technique := range mitre {
		entry, ok := technique.(map[string]any)
		if !ok {
			continue
		}
		id, ok := entry["technique_id"].(string)
		if !ok || mitreTechniqueRe.MatchString(id) {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid MITRE ATT&CK technique ID: " + id,
			Severity:    domain.SeverityMedium,
			Location:    fmt.Sprintf("mitre_attack[%d].technique_id", i),
			IssueCode:   "CS009",
			Remediation: "Use a valid MITRE ATT&CK technique ID such as T1059 or T1059.001",
		})
	}
}
