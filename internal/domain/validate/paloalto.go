package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

// paloAltoDescriptionMaxLen bounds the description attribute. Checked in
// code because Go's regexp caps repeat counts at 1000.
const paloAltoDescriptionMaxLen = 1024

// paloAltoFieldPatterns constrains each recognized rule attribute.
var paloAltoFieldPatterns = map[string]*regexp.Regexp{
	"rule_name":           regexp.MustCompile(`^[a-zA-Z0-9-_]{1,64}$`),
	"log_type":            regexp.MustCompile(`^(traffic|threat|url|data|wildfire|tunnel|auth|sctp|hip|userid|gtp|iptag|decryption)$`),
	"description":         regexp.MustCompile(`^.+$`),
	"severity":            regexp.MustCompile(`^(informational|low|medium|high|critical)$`),
	"source_zone":         regexp.MustCompile(`^[a-zA-Z0-9-_]{1,31}$`),
	"destination_zone":    regexp.MustCompile(`^[a-zA-Z0-9-_]{1,31}$`),
	"source_address":      regexp.MustCompile(`^(any|\d{1,3}(\.\d{1,3}){3}(/\d{1,2})?)$`),
	"destination_address": regexp.MustCompile(`^(any|\d{1,3}(\.\d{1,3}){3}(/\d{1,2})?)$`),
	"application":         regexp.MustCompile(`^[a-zA-Z0-9-_]{1,32}$`),
	"service":             regexp.MustCompile(`^(tcp|udp|icmp|application-default|any)$`),
}

// PaloAltoFieldWeights drives weighted scoring: the fields that decide what
// traffic a rule matches carry more weight than descriptive ones.
var PaloAltoFieldWeights = map[string]float64{
	"rule_name":           10,
	"log_type":            15,
	"description":         5,
	"severity":            10,
	"source_zone":         8,
	"destination_zone":    8,
	"source_address":      12,
	"destination_address": 12,
	"application":         10,
	"service":             10,
}

// paloAltoRequiredFields lists every attribute a complete rule must carry;
// each absence costs its full field weight.
var paloAltoRequiredFields = []string{
	"rule_name", "log_type", "description", "severity",
	"source_zone", "destination_zone",
	"source_address", "destination_address",
	"application", "service",
}

var paloAltoLineRe = regexp.MustCompile(`^\s*([a-zA-Z0-9_-]+)\s*[:=]\s*(.+?)\s*$`)

// PaloAltoValidator judges Palo Alto firewall rule definitions expressed as
// key/value attribute lines.
type PaloAltoValidator struct {
	policy *scoring.Policy
}

func NewPaloAltoValidator() *PaloAltoValidator {
	return &PaloAltoValidator{policy: scoring.FieldWeighted(PaloAltoFieldWeights)}
}

func (v *PaloAltoValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)

	fields := parsePaloAltoFields(det.Content)
	if len(fields) == 0 {
		result.AddIssue(domain.ValidationIssue{
			Message:     "No recognizable rule attributes found",
			Severity:    domain.SeverityHigh,
			Location:    "rule_structure",
			IssueCode:   "PA001",
			Remediation: "Express the rule as attribute lines in key: value form",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	v.checkRequiredFields(fields, result)
	v.checkFieldValues(fields, result)

	result.FormatSpecificDetails["fields"] = sortedKeys(fields)

	v.policy.Finalize(result)
	return result, nil
}

func (v *PaloAltoValidator) checkRequiredFields(fields map[string]string, result *domain.ValidationResult) {
	for _, field := range paloAltoRequiredFields {
		if _, ok := fields[field]; ok {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing required field: " + field,
			Severity:    domain.SeverityHigh,
			Location:    field,
			IssueCode:   "PA002",
			Remediation: fmt.Sprintf("Add a %s attribute to the rule", field),
		})
	}
}

func (v *PaloAltoValidator) checkFieldValues(fields map[string]string, result *domain.ValidationResult) {
	for field, value := range fields {
		pattern, known := paloAltoFieldPatterns[field]
		if !known {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Unknown rule attribute: " + field,
				Severity:    domain.SeverityLow,
				Location:    field,
				IssueCode:   "PA004",
				Remediation: "Remove the attribute or use a supported rule attribute name",
			})
			continue
		}
		if !pattern.MatchString(value) {
			result.AddIssue(domain.ValidationIssue{
				Message:     fmt.Sprintf("Invalid value for %s: %q", field, value),
				Severity:    domain.SeverityMedium,
				Location:    field,
				IssueCode:   "PA003",
				Remediation: fmt.Sprintf("Set %s to a value matching %s", field, pattern.String()),
			})
		} else if field == "description" && len(value) > paloAltoDescriptionMaxLen {
			result.AddIssue(domain.ValidationIssue{
				Message:     fmt.Sprintf("Invalid value for description: exceeds %d characters", paloAltoDescriptionMaxLen),
				Severity:    domain.SeverityMedium,
				Location:    field,
				IssueCode:   "PA003",
				Remediation: fmt.Sprintf("Shorten the description to at most %d characters", paloAltoDescriptionMaxLen),
			})
		}
	}
}

func parsePaloAltoFields(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if match := paloAltoLineRe.FindStringSubmatch(line); match != nil {
			fields[strings.ToLower(match[1])] = match[2]
		}
	}
	return fields
}
