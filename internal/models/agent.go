package models

// Agent topics understood by the rules agent.
const (
	TopicAutoPolicyMonitor     = "Auto Policy Monitor"
	TopicManualComplianceAudit = "Manual Compliance Audit"
)

// AgentRequest is the invocation payload for the rules agent. Input is either
// the raw content string or a structured command object.
type AgentRequest struct {
	Topic            string            `json:"topic"`
	Input            interface{}       `json:"input"`
	ContextVariables map[string]string `json:"contextVariables"`
}

// AuditInput is the structured input for manual audits.
type AuditInput struct {
	Command    string `json:"command"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	ScanType   string `json:"scanType,omitempty"`
}

type AgentResult struct {
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
}

// AgentResponse mirrors the agent invocation endpoint body.
type AgentResponse struct {
	Status string       `json:"status"`
	Result *AgentResult `json:"result"`
}
