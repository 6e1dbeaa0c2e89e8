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
	yaraRuleRe       = regexp.MustCompile(`^(?:(?:global|private)\s+)?rule\s+[a-zA-Z0-9_]+\s*(?::\s*[a-zA-Z0-9_]+)?\s*{[\s\S]*}`)
	yaraIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,127}$`)
	yaraRuleDeclRe   = regexp.MustCompile(`rule\s+([a-zA-Z0-9_]+)`)
	yaraStringDefRe  = regexp.MustCompile(`(\$[a-zA-Z0-9_]*)\s*=\s*("[^"]*"|{[^}]*}|/[^/]*/[ismx]*)`)
	yaraStringRefRe  = regexp.MustCompile(`\$[a-zA-Z0-9_]+`)
	yaraStringsRe    = regexp.MustCompile(`strings:\s*([\s\S]*?)(?:meta:|condition:|$)`)
	yaraMetaEntryRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*\s*=\s*("[^"]*"|\d+|true|false)$`)
)

var yaraReservedKeywords = map[string]bool{
	"all": true, "and": true, "any": true, "ascii": true, "at": true,
	"condition": true, "contains": true, "entrypoint": true, "false": true,
	"filesize": true, "fullword": true, "for": true, "global": true,
	"in": true, "import": true, "include": true, "int8": true, "int16": true,
	"int32": true, "int8be": true, "int16be": true, "int32be": true,
	"matches": true, "meta": true, "nocase": true, "not": true, "or": true,
	"of": true, "private": true, "rule": true, "strings": true, "them": true,
	"true": true, "uint8": true, "uint16": true, "uint32": true,
	"uint8be": true, "uint16be": true, "uint32be": true, "wide": true,
}

// YaraValidator judges YARA rules.
type YaraValidator struct {
	policy *scoring.Policy
}

func NewYaraValidator(policy *scoring.Policy) *YaraValidator {
	return &YaraValidator{policy: policy}
}

func (v *YaraValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	content := strings.TrimSpace(det.Content)

	if !yaraRuleRe.MatchString(content) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid YARA rule structure",
			Severity:    domain.SeverityHigh,
			Location:    "rule",
			IssueCode:   "YARA001",
			Remediation: "Ensure rule follows the format: [private|global] rule name [: tag] { ... }",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	identifier := yaraRuleIdentifier(content)
	v.checkIdentifier(identifier, result)
	v.checkMeta(content, result)
	defined := v.checkStrings(content, result)
	v.checkCondition(content, defined, result)

	result.FormatSpecificDetails["rule_name"] = identifier
	result.FormatSpecificDetails["string_count"] = len(defined)

	v.policy.Finalize(result)
	return result, nil
}

func (v *YaraValidator) checkIdentifier(identifier string, result *domain.ValidationResult) {
	var reason string
	switch {
	case identifier == "":
		reason = "empty rule identifier"
	case len(identifier) > 128:
		reason = "identifier exceeds maximum length of 128 characters"
	case !yaraIdentifierRe.MatchString(identifier):
		reason = "invalid identifier format"
	case yaraReservedKeywords[strings.ToLower(identifier)]:
		reason = "identifier is a reserved keyword"
	default:
		return
	}
	result.AddIssue(domain.ValidationIssue{
		Message:     "Invalid rule identifier: " + reason,
		Severity:    domain.SeverityHigh,
		Location:    "identifier",
		IssueCode:   "YARA002",
		Remediation: "Use alphanumeric characters and underscores, starting with a letter or underscore",
	})
}

func (v *YaraValidator) checkMeta(content string, result *domain.ValidationResult) {
	meta := yaraSection(content, "meta")
	if meta == "" {
		return
	}
	for _, line := range strings.Split(meta, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || yaraMetaEntryRe.MatchString(line) {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid meta section format",
			Severity:    domain.SeverityMedium,
			Location:    "meta",
			IssueCode:   "YARA003",
			Remediation: "Ensure meta entries follow format: identifier = value",
		})
		return
	}
}

// checkStrings validates the strings section and returns the set of defined
// string identifiers for cross-referencing against the condition.
func (v *YaraValidator) checkStrings(content string, result *domain.ValidationResult) map[string]bool {
	defined := make(map[string]bool)
	section := yaraStringsSection(content)
	if section == "" {
		return defined
	}

	for _, match := range yaraStringDefRe.FindAllStringSubmatch(section, -1) {
		identifier := match[1]
		if defined[identifier] {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Duplicate string identifier: " + identifier,
				Severity:    domain.SeverityMedium,
				Location:    "strings." + identifier,
				IssueCode:   "YARA005",
				Remediation: "Use unique identifiers for each string definition",
			})
		}
		defined[identifier] = true
	}

	return defined
}

func (v *YaraValidator) checkCondition(content string, defined map[string]bool, result *domain.ValidationResult) {
	idx := strings.Index(content, "condition:")
	if idx < 0 {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing condition section",
			Severity:    domain.SeverityHigh,
			Location:    "condition",
			IssueCode:   "YARA006",
			Remediation: "Add a condition section with the rule matching logic",
		})
		return
	}

	condition := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(content[idx+len("condition:"):]), "}"))
	if condition == "" {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Empty condition section",
			Severity:    domain.SeverityHigh,
			Location:    "condition",
			IssueCode:   "YARA006",
			Remediation: "Add matching logic to the condition section",
		})
		return
	}

	if !balancedParens(condition) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Unbalanced parentheses in condition",
			Severity:    domain.SeverityMedium,
			Location:    "condition",
			IssueCode:   "YARA007",
			Remediation: "Ensure every opening parenthesis has a matching closing parenthesis",
		})
	}

	for _, ref := range yaraStringRefRe.FindAllString(condition, -1) {
		if !defined[ref] {
			result.AddIssue(domain.ValidationIssue{
				Message:     fmt.Sprintf("Referenced string not defined: %s", ref),
				Severity:    domain.SeverityMedium,
				Location:    "condition",
				IssueCode:   "YARA007",
				Remediation: "Define " + ref + " in the strings section or remove the reference",
			})
		}
	}
}

func yaraRuleIdentifier(content string) string {
	if match := yaraRuleDeclRe.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}

func yaraStringsSection(content string) string {
	if match := yaraStringsRe.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}

func yaraSection(content, name string) string {
	re := regexp.MustCompile(name + `:\s*([\s\S]*?)(?:strings:|condition:|$)`)
	if match := re.FindStringSubmatch(content); match != nil {
		return match[1]
	}
	return ""
}
