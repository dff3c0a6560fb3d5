package estop

import "strings"

// StatusReport is the estop.status machine-JSON payload (schema_version 1).
type StatusReport struct {
	SchemaVersion  int      `json:"schema_version"`
	ReportType     string   `json:"report_type"`
	Engaged        bool     `json:"engaged"`
	KillAll        bool     `json:"kill_all"`
	NetworkKill    bool     `json:"network_kill"`
	BlockedDomains []string `json:"blocked_domains"`
	FrozenTools    []string `json:"frozen_tools"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// BuildStatusReport converts a state snapshot into its machine-JSON form.
func BuildStatusReport(state EstopState) StatusReport {
	report := StatusReport{
		SchemaVersion:  1,
		ReportType:     "estop.status",
		Engaged:        state.IsEngaged(),
		KillAll:        state.KillAll,
		NetworkKill:    state.NetworkKill,
		BlockedDomains: state.BlockedDomains,
		FrozenTools:    state.FrozenTools,
	}
	if !state.UpdatedAt.IsZero() {
		report.UpdatedAt = state.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return report
}

// FormatStatusLines renders the human-readable status text matching the
// original CLI's field layout.
func FormatStatusLines(state EstopState) []string {
	activeWord := func(b bool) string {
		if b {
			return "active"
		}
		return "inactive"
	}
	lines := []string{
		"Estop status:",
		"  engaged:        " + yesNo(state.IsEngaged()),
		"  kill_all:       " + activeWord(state.KillAll),
		"  network_kill:   " + activeWord(state.NetworkKill),
	}
	if len(state.BlockedDomains) == 0 {
		lines = append(lines, "  domain_blocks:  (none)")
	} else {
		lines = append(lines, "  domain_blocks:  "+strings.Join(state.BlockedDomains, ", "))
	}
	if len(state.FrozenTools) == 0 {
		lines = append(lines, "  tool_freeze:    (none)")
	} else {
		lines = append(lines, "  tool_freeze:    "+strings.Join(state.FrozenTools, ", "))
	}
	if !state.UpdatedAt.IsZero() {
		lines = append(lines, "  updated_at:     "+state.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return lines
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
