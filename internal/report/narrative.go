package report

import (
	"fmt"
	"strings"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const (
	adviceHIPAA    = "Healthcare data must be encrypted and only shared with authorized personnel under HIPAA regulations."
	advicePCI      = "Payment card information must be encrypted and handled according to PCI-DSS requirements."
	adviceSecurity = "Please revoke and rotate any credentials that may have been exposed immediately."
	advicePII      = "Please ensure you have appropriate consent and data processing agreements in place for personal data."
)

// Narrative describes the issues found in one piece of content. subject is
// the noun used for the content, such as "file" or "message".
func Narrative(subject string, issues []models.Issue) string {
	s := Summarize(issues)

	var b strings.Builder

	if contents := describe(s); len(contents) > 0 {
		fmt.Fprintf(&b, "This %s contains %s. ", subject, joinList(contents))
	}

	fmt.Fprintf(&b, "Specifically detected: %s. ", strings.Join(s.Details, ", "))
	fmt.Fprintf(&b, "Overall severity: %s. ", s.Severity)

	if s.HIPAA {
		b.WriteString(adviceHIPAA + " ")
	}
	if s.PCI {
		b.WriteString(advicePCI + " ")
	}
	if s.Security {
		b.WriteString(adviceSecurity + " ")
	}
	if s.PII {
		b.WriteString(advicePII + " ")
	}

	fmt.Fprintf(&b, "Please ensure this %s is properly secured and only shared with authorized personnel.", subject)
	return b.String()
}

func describe(s Summary) []string {
	var contents []string
	if s.HIPAA {
		contents = append(contents, "healthcare information (HIPAA regulated data)")
	}
	if s.PCI {
		contents = append(contents, "payment card information (PCI-DSS regulated data)")
	}
	if s.Security {
		contents = append(contents, "security credentials or passwords")
	}
	if s.PII {
		if s.HIPAA || s.PCI || s.Security {
			contents = append(contents, "other personal data")
		} else {
			contents = append(contents, "personally identifiable information (PII protected under privacy regulations)")
		}
	}
	return contents
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// FileNotification is the direct message sent after a file scan finds
// issues.
func FileNotification(fileName string, issues []models.Issue) string {
	return fmt.Sprintf("Hello, I noticed you shared a file %q that contains sensitive information. %s",
		fileName, Narrative("file", issues))
}

// MessageNotification is the direct message sent after a channel message
// scan finds issues. The first issue drives the regulatory hint.
func MessageNotification(userName, channelID string, issues []models.Issue) string {
	if userName == "" {
		userName = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s, I noticed you shared something in <#%s> that might contain sensitive information: %s. ",
		userName, channelID, strings.Join(models.Types(issues), ", "))

	if len(issues) > 0 {
		main := string(issues[0].Type)
		switch {
		case strings.Contains(main, "HIPAA"):
			b.WriteString("Healthcare information is protected under HIPAA regulations and requires special handling. ")
		case strings.Contains(main, "GDPR") || strings.Contains(main, "PII"):
			b.WriteString("Personal identifiable information is protected under privacy regulations like GDPR. ")
		case strings.Contains(main, "PCI"):
			b.WriteString("Payment card information must be handled according to PCI-DSS standards. ")
		case strings.Contains(main, "Security"):
			b.WriteString("Sharing credentials or secrets in chat channels poses a significant security risk. ")
		}
	}

	fmt.Fprintf(&b, "Severity: %s. ", Summarize(issues).Severity)

	if len(issues) > 1 {
		fmt.Fprintf(&b, "(%d additional issue types also detected) ", len(issues)-1)
	}

	b.WriteString("Please be careful about sharing such information in public channels.")
	return b.String()
}

// FileNameNotification is sent when only the file name could be checked.
func FileNameNotification(fileName string, issue models.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, I noticed you shared a file %q with a name that suggests it might contain sensitive information. ", fileName)

	switch issue.Type {
	case models.CategoryHIPAA:
		b.WriteString("The filename suggests it may contain healthcare or patient information that falls under HIPAA regulations. ")
	case models.CategoryPCIDSS:
		b.WriteString("The filename suggests it may contain payment card information that falls under PCI-DSS standards. ")
	case models.CategorySecurityCredentials:
		b.WriteString("The filename suggests it may contain security credentials or secrets. ")
	case models.CategoryGDPRPII:
		b.WriteString("The filename suggests it may contain personal data that falls under GDPR regulations. ")
	}

	b.WriteString("I couldn't scan the file contents because it's not a supported file type, but please be cautious with files that may contain regulated data. ")
	fmt.Fprintf(&b, "Severity: %s. ", issue.Severity)
	b.WriteString("Please ensure this file is properly secured and only shared with authorized personnel.")
	return b.String()
}
