package classifier

import "fmt"

const systemInstruction = "You are a compliance detection system specializing in identifying sensitive information in text content."

// BuildPrompt returns the analysis instructions for one content unit.
func BuildPrompt(content string) string {
	return fmt.Sprintf(`
Analyze the following content for compliance issues related to:
1. HIPAA (healthcare information)
2. PCI-DSS (payment card information)
3. Security Credentials (passwords, API keys, tokens)
4. GDPR-PII (personally identifiable information)

Content to analyze:
---
%s
---

For each issue you detect, provide the following information in your analysis:
- type: The category of the issue (HIPAA, PCI-DSS, Security-Credentials, or GDPR-PII)
- severity: The severity of the issue (Medium, High, or Critical)
- detail: A specific description of what was detected

Return your findings as a JSON object with this format:
{
  "issues": [
    {
      "type": "type-of-issue",
      "severity": "severity-level",
      "detail": "description-of-detected-issue"
    }
  ]
}

If no issues are found, return an empty issues array.
Use these severity guidelines:
- Critical: For PCI-DSS and security credentials
- High: For HIPAA
- Medium: For GDPR-PII

Be thorough but avoid false positives.
`, content)
}
