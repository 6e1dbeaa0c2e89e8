package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

var (
	yaralSyntaxRe       = regexp.MustCompile(`^rule\s+[\w_]+\s*{[\s\S]*}$`)
	yaralRuleNameRe     = regexp.MustCompile(`rule\s+([\w_]+)`)
	yaralMetaSectionRe  = regexp.MustCompile(`meta:\s*{([^}]+)}`)
	yaralEventsRe       = regexp.MustCompile(`events:\s*{([^}]+)}`)
	yaralConditionRe    = regexp.MustCompile(`condition:\s*{([^}]+)}`)
	yaralStringIdentRe  = regexp.MustCompile(`^\s*(\$[\w]+)\s*=`)
	yaralBoolOperatorRe = regexp.MustCompile(`\b(and|or|not)\b`)
	yaralFunctionRe     = regexp.MustCompile(`\w+\(`)
)

var yaralMetaRequiredFields = []string{"author", "description", "severity", "reference"}

var yaralSeverities = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

// YaraLValidator judges YARA-L rules as used by Chronicle detection engines.
// Sections are brace-delimited, unlike classic YARA.
type YaraLValidator struct {
	policy *scoring.Policy
	cfg    domain.YaraLConfig
}

func NewYaraLValidator(policy *scoring.Policy, cfg domain.YaraLConfig) *YaraLValidator {
	return &YaraLValidator{policy: policy, cfg: cfg}
}

func (v *YaraLValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	result.Metadata.ValidatorConfig = map[string]any{
		"maxConditionComplexity": v.cfg.MaxConditionComplexity,
	}
	content := strings.TrimSpace(det.Content)

	if !yaralSyntaxRe.MatchString(content) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid YARA-L rule syntax",
			Severity:    domain.SeverityHigh,
			Location:    "rule",
			IssueCode:   "YARAL001",
			Remediation: "Ensure rule follows basic YARA-L syntax: rule rule_name { ... }",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	meta := yaralSection(yaralMetaSectionRe, content)
	events := yaralSection(yaralEventsRe, content)
	condition := yaralSection(yaralConditionRe, content)

	v.checkMeta(meta, result)
	v.checkEvents(events, result)
	v.checkCondition(condition, result)

	result.FormatSpecificDetails["rule_name"] = yaralRuleName(content)
	result.FormatSpecificDetails["has_events"] = events != ""
	result.FormatSpecificDetails["condition_complexity"] = conditionComplexity(condition)

	v.policy.Finalize(result)
	return result, nil
}

func (v *YaraLValidator) checkMeta(meta string, result *domain.ValidationResult) {
	if meta == "" {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing meta section",
			Severity:    domain.SeverityHigh,
			Location:    "meta",
			IssueCode:   "YARAL002",
			Remediation: "Add meta section with required fields: author, description, severity, reference",
		})
		return
	}

	for _, field := range yaralMetaRequiredFields {
		if !strings.Contains(meta, field+":") {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Missing required meta field: " + field,
				Severity:    domain.SeverityHigh,
				Location:    "meta." + field,
				IssueCode:   "YARAL003",
				Remediation: fmt.Sprintf("Add required field %q to meta section", field),
			})
		}
	}

	if strings.Contains(meta, "severity:") {
		severity := yaralMetaValue(meta, "severity")
		if !yaralSeverities[strings.ToLower(strings.TrimSpace(severity))] {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Invalid severity value",
				Severity:    domain.SeverityMedium,
				Location:    "meta.severity",
				IssueCode:   "YARAL004",
				Remediation: "Use valid severity values: low, medium, high, critical",
			})
		}
	}
}

func (v *YaraLValidator) checkEvents(events string, result *domain.ValidationResult) {
	if events == "" {
		return
	}

	identifiers := make(map[string]bool)
	for _, line := range strings.Split(events, "\n") {
		match := yaralStringIdentRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		identifier := match[1]
		if identifiers[identifier] {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Duplicate event variable: " + identifier,
				Severity:    domain.SeverityHigh,
				Location:    "events." + identifier,
				IssueCode:   "YARAL005",
				Remediation: "Use unique identifiers for event variable definitions",
			})
		}
		identifiers[identifier] = true

		if patternComplexity(line) > v.cfg.MaxConditionComplexity {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Event pattern too complex: " + identifier,
				Severity:    domain.SeverityMedium,
				Location:    "events." + identifier,
				IssueCode:   "YARAL006",
				Remediation: "Simplify the pattern or split it across multiple variables",
			})
		}
	}
}

func (v *YaraLValidator) checkCondition(condition string, result *domain.ValidationResult) {
	if strings.TrimSpace(condition) == "" {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing condition section",
			Severity:    domain.SeverityHigh,
			Location:    "condition",
			IssueCode:   "YARAL007",
			Remediation: "Add condition section with detection logic",
		})
		return
	}

	if !yaralBoolOperatorRe.MatchString(condition) && yaralStringRefCount(condition) > 1 {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid boolean operators in condition",
			Severity:    domain.SeverityHigh,
			Location:    "condition",
			IssueCode:   "YARAL008",
			Remediation: "Combine condition terms with valid operators: and, or, not",
		})
	}

	if conditionComplexity(condition) > v.cfg.MaxConditionComplexity {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Condition logic too complex",
			Severity:    domain.SeverityMedium,
			Location:    "condition",
			IssueCode:   "YARAL009",
			Remediation: "Simplify condition logic or split into multiple rules",
		})
	}
}

func yaralSection(re *regexp.Regexp, content string) string {
	if match := re.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}

func yaralRuleName(content string) string {
	if match := yaralRuleNameRe.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}

func yaralMetaValue(meta, field string) string {
	re := regexp.MustCompile(field + `:\s*"([^"]+)"`)
	if match := re.FindStringSubmatch(meta); match != nil {
		return match[1]
	}
	return ""
}

func yaralStringRefCount(condition string) int {
	return len(yaraStringRefRe.FindAllString(condition, -1))
}

// conditionComplexity approximates logic cost as operator count plus
// function call count.
func conditionComplexity(condition string) int {
	return len(yaralBoolOperatorRe.FindAllString(condition, -1)) +
		len(yaralFunctionRe.FindAllString(condition, -1))
}

func patternComplexity(pattern string) int {
	return len(strings.Fields(pattern))
}
