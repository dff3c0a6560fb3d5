package consent

import "strings"

// Envelope is embedded (by JSON field promotion via composition, not Go
// embedding, to keep field order stable) at the top of every risk-report
// payload. schema_version is pinned per report_type; callers bump it only
// when a report's shape changes.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	ReportType    string `json:"report_type"`
}

// GeneratedNextCommand is one prefilled follow-up invocation in a
// preset.intent_orchestration report's next_commands list.
type GeneratedNextCommand struct {
	ID                      string   `json:"id"`
	Description             string   `json:"description"`
	Command                 string   `json:"command"`
	RequiresExplicitConsent bool     `json:"requires_explicit_consent"`
	ConsentReasons          []string `json:"consent_reasons,omitempty"`
	ConsentReasonKeys       []string `json:"consent_reason_keys,omitempty"`
}

// NewGeneratedCommand builds a GeneratedNextCommand, deriving
// requires_explicit_consent from whether any reasons were supplied.
func NewGeneratedCommand(id, description, command string, reasons []ConsentReasonCode) GeneratedNextCommand {
	reasonStrs := make([]string, len(reasons))
	for i, r := range reasons {
		reasonStrs[i] = string(r)
	}
	return GeneratedNextCommand{
		ID:                      id,
		Description:             description,
		Command:                 command,
		RequiresExplicitConsent: len(reasons) > 0,
		ConsentReasons:          reasonStrs,
		ConsentReasonKeys:       ReasonKeys(reasons),
	}
}

// ShellQuote wraps raw in single quotes, escaping embedded single quotes as
// '"'"'. Safe for direct use as a POSIX shell word.
func ShellQuote(raw string) string {
	escaped := strings.ReplaceAll(raw, "'", `'"'"'`)
	return "'" + escaped + "'"
}

// BuildCommandLine joins a program name and already-quoted/plain arguments
// with spaces, matching the original CLI's command-string assembly.
func BuildCommandLine(parts ...string) string {
	return strings.Join(parts, " ")
}
