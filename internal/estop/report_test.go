package estop

import (
	"strings"
	"testing"
)

func TestBuildStatusReportDisengaged(t *testing.T) {
	report := BuildStatusReport(EstopState{})
	if report.Engaged {
		t.Error("expected engaged=false")
	}
	if report.ReportType != "estop.status" {
		t.Errorf("got report_type %q", report.ReportType)
	}
}

func TestBuildStatusReportEngaged(t *testing.T) {
	report := BuildStatusReport(EstopState{KillAll: true, BlockedDomains: []string{"a.com"}})
	if !report.Engaged {
		t.Error("expected engaged=true")
	}
	if len(report.BlockedDomains) != 1 {
		t.Errorf("got %v", report.BlockedDomains)
	}
}

func TestFormatStatusLinesNone(t *testing.T) {
	lines := FormatStatusLines(EstopState{})
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "engaged:        no") {
		t.Errorf("expected 'no' for disengaged state, got:\n%s", joined)
	}
	if !strings.Contains(joined, "domain_blocks:  (none)") {
		t.Errorf("expected (none) placeholder, got:\n%s", joined)
	}
}

func TestFormatStatusLinesEngaged(t *testing.T) {
	lines := FormatStatusLines(EstopState{KillAll: true, FrozenTools: []string{"shell"}})
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "engaged:        yes") {
		t.Errorf("expected 'yes' for engaged state, got:\n%s", joined)
	}
	if !strings.Contains(joined, "tool_freeze:    shell") {
		t.Errorf("expected frozen tool listed, got:\n%s", joined)
	}
}
