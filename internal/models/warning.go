package models

// WarningEvent is a structured warning surfaced to the external reporting
// sink. Warnings never abort a conversion run; they exist so a human can fix
// the source data.
type WarningEvent struct {
	Module    string            `json:"module"`
	Operation string            `json:"operation"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
}
