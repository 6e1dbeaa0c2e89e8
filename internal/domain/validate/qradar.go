package validate

import (
	"context"
	"regexp"
	"strings"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

var (
	qradarSelectRe   = regexp.MustCompile(`(?i)^\s*SELECT\s+([-\w\s,*().]+?)\s+FROM\b`)
	qradarFieldRe    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	qradarFunctionRe = regexp.MustCompile(`\b([A-Z][A-Z0-9_]*)\(`)
)

var qradarFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"DATEFORMAT": true, "CONCAT": true, "UPPER": true, "LOWER": true,
	"STR": true, "LONG": true,
}

// qradarClauseStage orders the AQL clauses; a clause keyword may never appear
// after a later-stage keyword.
var qradarClauseStage = map[string]int{
	"SELECT": 0,
	"FROM":   1,
	"WHERE":  2,
	"GROUP":  3,
	"ORDER":  4,
}

// QRadarValidator judges QRadar AQL queries.
type QRadarValidator struct {
	policy *scoring.Policy
}

func NewQRadarValidator(policy *scoring.Policy) *QRadarValidator {
	return &QRadarValidator{policy: policy}
}

func (v *QRadarValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	content := strings.TrimSpace(det.Content)

	// Structural phase: a bare minimum SELECT ... FROM skeleton.
	if !qradarSelectRe.MatchString(content) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing or invalid SELECT ... FROM statement",
			Severity:    domain.SeverityHigh,
			Location:    "query",
			IssueCode:   "QR001",
			Remediation: "Ensure the query follows basic AQL structure: SELECT ... FROM ... [WHERE] [GROUP BY]",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	v.checkClauseOrdering(content, result)
	v.checkFieldNames(content, result)
	v.checkFunctions(content, result)

	result.FormatSpecificDetails["functions"] = extractQRadarFunctions(content)

	v.policy.Finalize(result)
	return result, nil
}

// checkClauseOrdering walks the query tokens and flags any clause keyword
// appearing after a later-stage one, e.g. a second FROM following WHERE.
func (v *QRadarValidator) checkClauseOrdering(content string, result *domain.ValidationResult) {
	maxStage := -1
	for _, token := range strings.Fields(strings.ToUpper(content)) {
		stage, isClause := qradarClauseStage[token]
		if !isClause {
			continue
		}
		if stage < maxStage {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Invalid clause ordering: " + token + " appears after a later clause",
				Severity:    domain.SeverityHigh,
				Location:    "query",
				IssueCode:   "QR002",
				Remediation: "Order clauses as SELECT, FROM, WHERE, GROUP BY, ORDER BY",
			})
			return
		}
		if stage > maxStage {
			maxStage = stage
		}
	}
}

func (v *QRadarValidator) checkFieldNames(content string, result *domain.ValidationResult) {
	m := qradarSelectRe.FindStringSubmatch(content)
	if len(m) < 2 {
		return
	}

	for _, field := range strings.Split(m[1], ",") {
		field = strings.TrimSpace(field)
		if field == "*" || field == "" {
			continue
		}
		// Strip aliases and skip function-call expressions.
		if i := strings.Index(strings.ToUpper(field), " AS "); i >= 0 {
			field = strings.TrimSpace(field[:i])
		}
		if strings.Contains(field, "(") {
			continue
		}
		if !qradarFieldRe.MatchString(field) {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Invalid field name: " + field,
				Severity:    domain.SeverityHigh,
				Location:    "field:" + field,
				IssueCode:   "QR003",
				Remediation: "Field names must contain only letters, digits and underscores",
			})
		}
	}
}

func (v *QRadarValidator) checkFunctions(content string, result *domain.ValidationResult) {
	for _, name := range extractQRadarFunctions(content) {
		if qradarFunctions[name] {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Invalid function name: " + name,
			Severity:    domain.SeverityMedium,
			Location:    "function:" + name,
			IssueCode:   "QR004",
			Remediation: "Use valid AQL function names such as COUNT, SUM, AVG, DATEFORMAT",
		})
	}
}

func extractQRadarFunctions(content string) []string {
	var names []string
	for _, m := range qradarFunctionRe.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}
