package validate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

var (
	kqlTableRe      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	kqlTimeWindowRe = regexp.MustCompile(`ago\((\d+)([hdm])\)`)
	kqlOperatorRe   = regexp.MustCompile(`^([a-z][a-z-]*)`)
)

var kqlOperators = map[string]bool{
	"where": true, "summarize": true, "project": true, "extend": true,
	"join": true, "union": true, "sort": true, "order": true,
	"take": true, "limit": true, "top": true, "count": true,
	"distinct": true, "parse": true, "render": true, "mv-expand": true,
	"evaluate": true, "lookup": true, "search": true,
	"project-away": true, "project-rename": true, "project-reorder": true,
}

// kqlForbiddenChars never appear in a well-formed analytics query body.
var kqlForbiddenChars = []string{"`", ";"}

// KQLValidator judges Azure Sentinel KQL queries.
type KQLValidator struct {
	policy *scoring.Policy
}

func NewKQLValidator(policy *scoring.Policy) *KQLValidator {
	return &KQLValidator{policy: policy}
}

func (v *KQLValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	query := strings.TrimSpace(det.Content)

	if issue, ok := v.structuralIssue(query); ok {
		result.AddIssue(issue)
		v.policy.Finalize(result)
		return result, nil
	}

	stages := splitPipeline(query)
	operators := v.checkOperators(stages, result)
	v.checkOperatorOrder(operators, result)
	v.checkTimeWindow(query, result)

	result.FormatSpecificDetails["table"] = strings.Fields(stages[0])[0]
	result.FormatSpecificDetails["operators"] = operators

	v.policy.Finalize(result)
	return result, nil
}

func (v *KQLValidator) structuralIssue(query string) (domain.ValidationIssue, bool) {
	issue := domain.ValidationIssue{
		Severity:   domain.SeverityHigh,
		Location:   "query_structure",
		IssueCode:  "KQL001",
		Structural: true,
	}

	for _, ch := range kqlForbiddenChars {
		if strings.Contains(query, ch) {
			issue.Message = fmt.Sprintf("Query contains forbidden character %q", ch)
			issue.Remediation = "Remove control characters that are not part of the KQL language"
			return issue, true
		}
	}

	if !balancedDelimiters(query) {
		issue.Message = "Unbalanced parentheses, brackets, or braces in query"
		issue.Remediation = "Ensure every opening delimiter has a matching closing delimiter"
		return issue, true
	}

	stages := splitPipeline(query)
	if len(stages) == 0 || !kqlTableRe.MatchString(strings.Fields(stages[0])[0]) {
		issue.Message = "Query must start with a valid table name"
		issue.Remediation = "Begin the query with a table reference such as SecurityEvent"
		return issue, true
	}

	return domain.ValidationIssue{}, false
}

// checkOperators verifies each piped stage starts with a known tabular
// operator and returns the operator sequence for ordering analysis.
func (v *KQLValidator) checkOperators(stages []string, result *domain.ValidationResult) []string {
	operators := make([]string, 0, len(stages)-1)
	for i, stage := range stages[1:] {
		match := kqlOperatorRe.FindStringSubmatch(strings.TrimSpace(stage))
		if match == nil || !kqlOperators[match[1]] {
			result.AddIssue(domain.ValidationIssue{
				Message:     fmt.Sprintf("Unknown operator in pipeline stage %d", i+2),
				Severity:    domain.SeverityMedium,
				Location:    fmt.Sprintf("pipeline[%d]", i+1),
				IssueCode:   "KQL002",
				Remediation: "Use a supported tabular operator such as where, summarize, or project",
			})
			operators = append(operators, "")
			continue
		}
		operators = append(operators, match[1])
	}
	return operators
}

func (v *KQLValidator) checkOperatorOrder(operators []string, result *domain.ValidationResult) {
	advise := func(i int, message, remediation string) {
		result.AddIssue(domain.ValidationIssue{
			Message:     message,
			Severity:    domain.SeverityLow,
			Location:    fmt.Sprintf("pipeline[%d]", i),
			IssueCode:   "KQL003",
			Remediation: remediation,
		})
	}

	seenSummarize := false
	seenProject := false
	for i, op := range operators {
		switch op {
		case "summarize":
			seenSummarize = true
		case "project", "project-away", "project-rename":
			seenProject = true
		case "where":
			if seenSummarize {
				advise(i, "Filter applied after summarize",
					"Move where clauses before summarize to reduce the aggregated row set")
			} else if seenProject {
				advise(i, "Filter applied after project",
					"Move where clauses before project so filtering runs on the full column set")
			}
		}
		if i > 0 && op != "" && op == operators[i-1] {
			advise(i, "Consecutive "+op+" operators can be merged",
				"Combine adjacent "+op+" stages into a single stage")
		}
	}
}

func (v *KQLValidator) checkTimeWindow(query string, result *domain.ValidationResult) {
	windows := kqlTimeWindowRe.FindAllStringSubmatch(query, -1)
	if len(windows) == 0 {
		if strings.Contains(query, "between") {
			return
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     "Query has no time window filter",
			Severity:    domain.SeverityMedium,
			Location:    "time_window",
			IssueCode:   "KQL004",
			Remediation: "Bound the query with a time filter such as TimeGenerated > ago(24h)",
		})
		return
	}

	for _, w := range windows {
		if agoDuration(w[1], w[2]) > 24*time.Hour {
			result.AddIssue(domain.ValidationIssue{
				Message:     "Time window exceeds 24 hours",
				Severity:    domain.SeverityLow,
				Location:    "time_window",
				IssueCode:   "KQL005",
				Remediation: "Consider the performance impact of wide time windows",
			})
		}
	}
}

func agoDuration(amount, unit string) time.Duration {
	n, err := strconv.Atoi(amount)
	if err != nil {
		return 0
	}
	switch unit {
	case "d":
		return time.Duration(n) * 24 * time.Hour
	case "h":
		return time.Duration(n) * time.Hour
	default:
		return time.Duration(n) * time.Minute
	}
}
