// Package incident builds incident records from scan results and persists
// them to the configured case store.
package incident

import (
	"fmt"
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/report"
)

// MessageLink returns the archive permalink for a channel message.
func MessageLink(channel, ts string) string {
	return fmt.Sprintf("https://slack.com/archives/%s/p%s", channel, strings.Replace(ts, ".", "", 1))
}

// Severity is the highest of the combined category severity and every
// issue's own severity. Payment card or credential content is always
// Critical.
func Severity(issues []models.Issue) models.Severity {
	severity := report.Summarize(issues).Severity
	for _, issue := range issues {
		severity = models.MaxSeverity(severity, issue.Severity)
	}
	return severity
}

// ForMessage builds the incident for a flagged channel message.
func ForMessage(issues []models.Issue, user, channel, ts string) *models.Incident {
	types := report.CombinedTypes(issues)

	inc := models.NewIncident(types, Severity(issues),
		fmt.Sprintf("Detected %s in channel <#%s>", strings.Join(types, ", "), channel))
	inc.MessageLink = MessageLink(channel, ts)
	inc.User = user
	inc.Channel = channel
	return inc
}

// ForFile builds the incident for a file whose content was scanned.
func ForFile(fileName, permalink string, issues []models.Issue, user, channel string) *models.Incident {
	inc := models.NewIncident(report.CombinedTypes(issues), Severity(issues),
		fmt.Sprintf("Detected multiple compliance issues in file %q - %s", fileName, strings.Join(models.Details(issues), ", ")))
	inc.MessageLink = permalink
	inc.User = user
	inc.Channel = channel
	return inc
}

// ForFileName builds the incident for a file judged by its name alone. The
// issue keeps its own severity.
func ForFileName(fileName, permalink string, issue models.Issue, user, channel string) *models.Incident {
	inc := models.NewIncident([]string{string(issue.Type)}, issue.Severity,
		fmt.Sprintf("Detected potential %s based on file name %q", issue.Type, fileName))
	inc.MessageLink = permalink
	inc.User = user
	inc.Channel = channel
	return inc
}
