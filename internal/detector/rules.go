package detector

import (
	"regexp"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

const cardNumberExpr = `\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|3[47][0-9]{13}|3(?:0[0-5]|[68][0-9])[0-9]{11}|6(?:011|5[0-9]{2})[0-9]{12}|(?:2131|1800|35\d{3})\d{11})\b`

// Shared patterns. Card prefixes cover Visa, Mastercard, Amex, Diners,
// Discover and JCB.
var (
	EmailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	SSNPattern         = regexp.MustCompile(`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`)
	HealthcarePattern  = regexp.MustCompile(`(?i)patient|medical|diagnosis|treatment|health|medication|doctor`)
	CredentialPattern  = regexp.MustCompile(`(?i)password|secret|key|token|credential|api key|private key|access key|ssh key`)
	CardNumberPattern  = regexp.MustCompile(cardNumberExpr)
	PaymentCardPattern = regexp.MustCompile(`(?i)` + cardNumberExpr + `|credit card|card number|cvv|exp date|expiration date|card verification`)
	ConfidentialMarker = regexp.MustCompile(`(?i)confidential|top secret|internal only|do not share`)
)

// NewEmailDetector flags email addresses as GDPR personal data.
func NewEmailDetector() *PatternDetector {
	return NewPatternDetector("email_address", models.CategoryGDPRPII, models.SeverityMedium,
		"Email address detected", EmailPattern)
}

// NewSSNDetector flags social security number patterns.
func NewSSNDetector() *PatternDetector {
	return NewPatternDetector("ssn_pattern", models.CategoryHIPAAPII, models.SeverityHigh,
		"SSN pattern detected", SSNPattern)
}

// NewHealthcareDetector flags healthcare keywords.
func NewHealthcareDetector() *PatternDetector {
	return NewPatternDetector("healthcare_keywords", models.CategoryHIPAA, models.SeverityHigh,
		"Healthcare information detected", HealthcarePattern)
}

// NewCredentialDetector flags passwords, keys and tokens.
func NewCredentialDetector() *PatternDetector {
	return NewPatternDetector("security_credentials", models.CategorySecurityCredentials, models.SeverityCritical,
		"Security credential detected", CredentialPattern)
}

// NewPaymentCardDetector flags card numbers and card keywords.
func NewPaymentCardDetector() *PatternDetector {
	return NewPatternDetector("payment_card", models.CategoryPCIDSS, models.SeverityCritical,
		"Credit card information detected", PaymentCardPattern)
}

// NewConfidentialityDetector flags confidentiality markers.
func NewConfidentialityDetector() *PatternDetector {
	return NewPatternDetector("confidentiality_marker", models.CategoryInternalPolicy, models.SeverityMedium,
		"Confidential information marker detected", ConfidentialMarker)
}

// DefaultDetectors returns the local rule set in evaluation order.
func DefaultDetectors() []Detector {
	return []Detector{
		NewEmailDetector(),
		NewSSNDetector(),
		NewHealthcareDetector(),
		NewCredentialDetector(),
		NewPaymentCardDetector(),
		NewConfidentialityDetector(),
	}
}
