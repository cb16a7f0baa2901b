package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskStatus is the three-level classification every calculator reports.
// It is always recomputed from the inputs, never stored.
type RiskStatus int

const (
	Healthy RiskStatus = iota
	Warning
	Critical
)

var riskStatusLabels = map[RiskStatus]string{
	Healthy:  "healthy",
	Warning:  "warning",
	Critical: "critical",
}

var riskStatusCodes = map[string]RiskStatus{
	"healthy":  Healthy,
	"warning":  Warning,
	"critical": Critical,
}

// String returns the lowercase label for the status.
func (s RiskStatus) String() string {
	if label, ok := riskStatusLabels[s]; ok {
		return label
	}
	return "unknown"
}

// Severity orders statuses from most to least urgent (critical = 0).
func (s RiskStatus) Severity() int {
	switch s {
	case Critical:
		return 0
	case Warning:
		return 1
	default:
		return 2
	}
}

// ParseRiskStatus returns the status for a label (case-insensitive).
func ParseRiskStatus(label string) (RiskStatus, bool) {
	s, ok := riskStatusCodes[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// AllRiskStatuses lists statuses from most to least urgent.
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{Critical, Warning, Healthy}
}

func (s RiskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RiskStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("risk status: %w", err)
	}
	parsed, ok := ParseRiskStatus(label)
	if !ok {
		return fmt.Errorf("risk status: unknown label %q", label)
	}
	*s = parsed
	return nil
}
