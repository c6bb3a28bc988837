package report

import (
	"fmt"
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const reportAdvisory = "Please review and address these compliance concerns. Remember that sharing sensitive information in public channels may violate company policy or regulations."

// Group is every issue of one type, in scan order.
type Group struct {
	Type   models.Category
	Issues []models.Issue
}

// GroupByType groups issues by type in order of first appearance.
func GroupByType(issues []models.Issue) []Group {
	index := make(map[models.Category]int)
	groups := make([]Group, 0)

	for _, issue := range issues {
		i, ok := index[issue.Type]
		if !ok {
			i = len(groups)
			index[issue.Type] = i
			groups = append(groups, Group{Type: issue.Type})
		}
		groups[i].Issues = append(groups[i].Issues, issue)
	}

	return groups
}

// Target renders the audit target as chat markup.
func Target(targetType, targetID string) string {
	switch targetType {
	case "channel":
		return fmt.Sprintf("<#%s>", targetID)
	case "user":
		return fmt.Sprintf("<@%s>", targetID)
	default:
		return "the file"
	}
}

// FormatIssues renders the grouped audit report.
func FormatIssues(issues []models.Issue, targetType, targetID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":warning: I found %d potential compliance issue(s) in %s:\n\n", len(issues), Target(targetType, targetID))

	for _, group := range GroupByType(issues) {
		fmt.Fprintf(&b, "*%s*: %d issue(s)\n", group.Type, len(group.Issues))
		fmt.Fprintf(&b, "- %s\n", group.Issues[0].Detail)
		if len(group.Issues) > 1 {
			fmt.Fprintf(&b, "- And %d more similar issue(s)\n", len(group.Issues)-1)
		}
	}

	b.WriteString("\n" + reportAdvisory)
	return b.String()
}
