package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/rulegate/rulegate/internal/domain"
	"github.com/rulegate/rulegate/internal/domain/scoring"
)

var (
	splunkPipelineRe  = regexp.MustCompile(`\|\s*(\w+)`)
	splunkFieldRe     = regexp.MustCompile(`([\w.]+)\s*=\s*["']?([^"'\s]+)["']?`)
	splunkFunctionRe  = regexp.MustCompile(`(\w+)\s*\(([^)]*)\)`)
	splunkTimeRangeRe = regexp.MustCompile(`earliest\s*=\s*\S+(\s+latest\s*=\s*\S+)?`)
)

// splunkCommands are the SPL commands accepted as pipeline stages; the first
// token of the query must be one of these.
var splunkCommands = map[string]bool{
	"search": true, "where": true, "stats": true, "eval": true,
	"rename": true, "table": true, "dedup": true, "sort": true,
	"head": true, "tail": true, "top": true, "rare": true,
	"fields": true, "transaction": true, "tstats": true,
}

var splunkFunctions = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"earliest": true, "latest": true, "list": true, "values": true,
	"upper": true, "lower": true, "len": true, "substr": true,
}

// cimFields are the Common Information Model field names accepted in strict
// CIM mode.
var cimFields = map[string]bool{
	"src_ip": true, "dest_ip": true, "src_port": true, "dest_port": true,
	"user": true, "process": true, "action": true, "app": true,
	"src": true, "dest": true, "signature": true, "severity": true,
}

// splunkDependencies maps commands to a clause they cannot appear without.
var splunkDependencies = map[string]string{
	"stats":  "by",
	"rename": "as",
}

// splunkDependencyRes holds one word-boundary matcher per dependency clause.
var splunkDependencyRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(splunkDependencies))
	for _, dep := range splunkDependencies {
		res[dep] = regexp.MustCompile(`\b` + regexp.QuoteMeta(dep) + `\b`)
	}
	return res
}()

// SplunkValidator judges Splunk SPL queries.
type SplunkValidator struct {
	policy *scoring.Policy
	cfg    domain.SplunkConfig
}

func NewSplunkValidator(policy *scoring.Policy, cfg domain.SplunkConfig) *SplunkValidator {
	return &SplunkValidator{policy: policy, cfg: cfg}
}

func (v *SplunkValidator) Validate(ctx context.Context, det *domain.Detection) (*domain.ValidationResult, error) {
	result := newResult(det)
	result.Metadata.ValidatorConfig = map[string]any{
		"strict_cim":         v.cfg.StrictCIM,
		"max_pipeline_depth": v.cfg.MaxPipelineDepth,
		"require_time_range": v.cfg.RequireTimeRange,
	}

	content := strings.TrimSpace(det.Content)
	stages := splitPipeline(content)

	// Structural phase: the query must open with a search-like command.
	if !v.hasLeadingCommand(stages) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing or invalid initial search command",
			Severity:    domain.SeverityHigh,
			Location:    "line:1",
			IssueCode:   "SPL001",
			Remediation: "Start the SPL query with a generating command such as 'search'",
			Structural:  true,
		})
		v.policy.Finalize(result)
		return result, nil
	}

	if len(stages) > v.cfg.MaxPipelineDepth {
		result.AddIssue(domain.ValidationIssue{
			Message:     fmt.Sprintf("Pipeline depth %d exceeds maximum allowed (%d)", len(stages), v.cfg.MaxPipelineDepth),
			Severity:    domain.SeverityMedium,
			Location:    fmt.Sprintf("pipeline:%d", len(stages)),
			IssueCode:   "SPL002",
			Remediation: "Simplify the search by reducing the number of pipeline stages",
		})
	}

	v.checkCIMFields(content, result)
	v.checkFunctions(content, result)
	v.checkDependencies(stages, content, result)

	if v.cfg.RequireTimeRange && !splunkTimeRangeRe.MatchString(content) {
		result.AddIssue(domain.ValidationIssue{
			Message:     "Missing time range specification",
			Severity:    domain.SeverityHigh,
			Location:    "timerange",
			IssueCode:   "SPL006",
			Remediation: "Add 'earliest' and 'latest' time range parameters",
		})
	}

	result.FormatSpecificDetails["pipeline_depth"] = len(stages)
	result.FormatSpecificDetails["commands"] = stageCommands(stages)

	v.policy.Finalize(result)
	return result, nil
}

func (v *SplunkValidator) hasLeadingCommand(stages []string) bool {
	if len(stages) == 0 {
		return false
	}
	first := strings.Fields(stages[0])
	return len(first) > 0 && splunkCommands[strings.ToLower(first[0])]
}

func (v *SplunkValidator) checkCIMFields(content string, result *domain.ValidationResult) {
	if !v.cfg.StrictCIM {
		return
	}
	for _, m := range splunkFieldRe.FindAllStringSubmatch(content, -1) {
		field := m[1]
		if cimFields[field] || strings.Contains(field, ".") {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     fmt.Sprintf("Non-CIM compliant field name: %s", field),
			Severity:    domain.SeverityMedium,
			Location:    "field:" + field,
			IssueCode:   "SPL003",
			Remediation: cimRemediation(field),
		})
	}
}

func (v *SplunkValidator) checkFunctions(content string, result *domain.ValidationResult) {
	for _, m := range splunkFunctionRe.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(m[1])
		if splunkCommands[name] || splunkFunctions[name] {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     fmt.Sprintf("Unsupported function: %s", m[1]),
			Severity:    domain.SeverityMedium,
			Location:    "function:" + m[1],
			IssueCode:   "SPL004",
			Remediation: "Use only supported SPL functions",
		})
	}
}

func (v *SplunkValidator) checkDependencies(stages []string, content string, result *domain.ValidationResult) {
	lowered := strings.ToLower(content)
	for _, stage := range stages {
		tokens := strings.Fields(stage)
		if len(tokens) == 0 {
			continue
		}
		cmd := strings.ToLower(tokens[0])
		dep, has := splunkDependencies[cmd]
		if !has || splunkDependencyRes[dep].MatchString(lowered) {
			continue
		}
		result.AddIssue(domain.ValidationIssue{
			Message:     fmt.Sprintf("Missing required dependency '%s' for command '%s'", dep, cmd),
			Severity:    domain.SeverityHigh,
			Location:    "command:" + cmd,
			IssueCode:   "SPL005",
			Remediation: fmt.Sprintf("Add the '%s' clause to the '%s' command", dep, cmd),
		})
	}
}

// cimRemediation suggests a snake_case CIM-style name; camelCase field names
// are split into their words first.
func cimRemediation(field string) string {
	words := camelcase.Split(field)
	if len(words) < 2 {
		return "Use CIM-compliant field names for better compatibility"
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return fmt.Sprintf("Use a CIM-compliant field name such as %q", strings.Join(words, "_"))
}

// splitPipeline splits an SPL query into its pipeline stages.
func splitPipeline(content string) []string {
	var stages []string
	for _, s := range strings.Split(content, "|") {
		if strings.TrimSpace(s) != "" {
			stages = append(stages, strings.TrimSpace(s))
		}
	}
	return stages
}

func stageCommands(stages []string) []string {
	cmds := make([]string, 0, len(stages))
	for _, stage := range stages {
		tokens := strings.Fields(stage)
		if len(tokens) > 0 {
			cmds = append(cmds, strings.ToLower(tokens[0]))
		}
	}
	return cmds
}
