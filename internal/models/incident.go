package models

import (
	"strings"
	"time"
)

type IncidentStatus string

// Only IncidentStatusOpen is ever written by this service; the others are
// transitions made by people working the case.
const (
	IncidentStatusOpen          IncidentStatus = "Open"
	IncidentStatusInReview      IncidentStatus = "In Review"
	IncidentStatusResolved      IncidentStatus = "Resolved"
	IncidentStatusFalsePositive IncidentStatus = "False Positive"
)

// Incident is the case record raised for one positive scan.
type Incident struct {
	ID          string         `json:"id,omitempty"`
	Types       []string       `json:"types"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	MessageLink string         `json:"message_link"`
	User        string         `json:"user"`
	Channel     string         `json:"channel"`
	Status      IncidentStatus `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
}

func NewIncident(types []string, severity Severity, description string) *Incident {
	return &Incident{
		Types:       types,
		Severity:    severity,
		Description: description,
		Status:      IncidentStatusOpen,
		Timestamp:   time.Now().UTC(),
	}
}

// TypeList joins the incident types with sep.
func (i *Incident) TypeList(sep string) string {
	return strings.Join(i.Types, sep)
}
