package models

import "fmt"

// Category tags the compliance domain of an issue. The set is open: remote
// classifiers and the rules agent may introduce their own tags.
type Category string

const (
	CategoryHIPAA               Category = "HIPAA"
	CategoryHIPAAPII            Category = "HIPAA/PII"
	CategoryPCIDSS              Category = "PCI-DSS"
	CategorySecurityCredentials Category = "Security-Credentials"
	CategoryGDPRPII             Category = "GDPR-PII"
	CategoryInternalPolicy      Category = "Internal Policy"

	// CategoryInfoSecurity is emitted by the simulated rules agent.
	CategoryInfoSecurity Category = "Info Security"
)

// Issue is one detected compliance concern.
type Issue struct {
	Type     Category `json:"type"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

func NewIssue(category Category, severity Severity, detail string) Issue {
	return Issue{
		Type:     category,
		Severity: severity,
		Detail:   detail,
	}
}

// Validate checks the invariants every issue must hold. Detail may be empty:
// agent-sourced issues are allowed to omit it.
func (i Issue) Validate() error {
	if i.Type == "" {
		return fmt.Errorf("issue has empty type")
	}
	if !i.Severity.Valid() {
		return fmt.Errorf("issue %s has invalid severity %d", i.Type, int(i.Severity))
	}
	return nil
}

// RawIssue is an issue as decoded from remote structured output. Absent
// fields stay nil so they can be told apart from zero values.
type RawIssue struct {
	Type     *string `json:"type"`
	Severity *string `json:"severity"`
	Detail   *string `json:"detail"`
}

// Issue converts r. A missing type or severity is an error; a missing
// detail becomes empty.
func (r RawIssue) Issue() (Issue, error) {
	if r.Type == nil {
		return Issue{}, fmt.Errorf("issue has no type")
	}
	if r.Severity == nil {
		return Issue{}, fmt.Errorf("issue %s has no severity", *r.Type)
	}

	severity, err := ParseSeverity(*r.Severity)
	if err != nil {
		return Issue{}, err
	}

	issue := Issue{Type: Category(*r.Type), Severity: severity}
	if r.Detail != nil {
		issue.Detail = *r.Detail
	}
	return issue, issue.Validate()
}

// DecodeIssues converts every raw issue, stopping at the first invalid one.
func DecodeIssues(raw []RawIssue) ([]Issue, error) {
	issues := make([]Issue, 0, len(raw))
	for _, r := range raw {
		issue, err := r.Issue()
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Types returns the type of each issue in order.
func Types(issues []Issue) []string {
	types := make([]string, len(issues))
	for i, issue := range issues {
		types[i] = string(issue.Type)
	}
	return types
}

// Details returns the detail text of each issue in order.
func Details(issues []Issue) []string {
	details := make([]string, len(issues))
	for i, issue := range issues {
		details[i] = issue.Detail
	}
	return details
}
