package estop

import "testing"

func TestDomainBlockedWildcard(t *testing.T) {
	if !DomainBlocked([]string{"*"}, "anything.example.com") {
		t.Error("wildcard * should block every domain")
	}
}

func TestDomainBlockedSubdomainWildcard(t *testing.T) {
	patterns := []string{"*.example.com"}
	if !DomainBlocked(patterns, "example.com") {
		t.Error("*.example.com should block the bare apex domain")
	}
	if !DomainBlocked(patterns, "api.example.com") {
		t.Error("*.example.com should block a subdomain")
	}
	if DomainBlocked(patterns, "notexample.com") {
		t.Error("*.example.com should not block an unrelated domain")
	}
}

func TestDomainBlockedExact(t *testing.T) {
	patterns := []string{"example.com"}
	if !DomainBlocked(patterns, "example.com") {
		t.Error("exact pattern should match exact domain")
	}
	if DomainBlocked(patterns, "api.example.com") {
		t.Error("exact pattern should not match a subdomain")
	}
}

func TestDomainBlockedCaseInsensitive(t *testing.T) {
	if !DomainBlocked([]string{"Example.COM"}, "example.com") {
		t.Error("domain matching should be case-insensitive")
	}
}

func TestToolFrozen(t *testing.T) {
	if !ToolFrozen([]string{"shell", "browser"}, "shell") {
		t.Error("expected shell to be frozen")
	}
	if ToolFrozen([]string{"shell"}, "browser") {
		t.Error("expected browser to not be frozen")
	}
}

func TestEvaluateToolActionKillAll(t *testing.T) {
	d := EvaluateToolAction(EstopState{KillAll: true}, "shell", "")
	if !d.Denied {
		t.Error("kill_all should deny every action")
	}
}

func TestEvaluateToolActionFrozenTool(t *testing.T) {
	d := EvaluateToolAction(EstopState{FrozenTools: []string{"shell"}}, "shell", "")
	if !d.Denied {
		t.Error("frozen tool should be denied")
	}
}

func TestEvaluateToolActionNetworkKillOnlyAppliesWithDomain(t *testing.T) {
	d := EvaluateToolAction(EstopState{NetworkKill: true}, "local-tool", "")
	if d.Denied {
		t.Error("network_kill should not deny a tool with no network egress")
	}
	d = EvaluateToolAction(EstopState{NetworkKill: true}, "fetch", "example.com")
	if !d.Denied {
		t.Error("network_kill should deny a tool reaching out over the network")
	}
}

func TestEvaluateToolActionBlockedDomain(t *testing.T) {
	d := EvaluateToolAction(EstopState{BlockedDomains: []string{"*.evil.com"}}, "fetch", "api.evil.com")
	if !d.Denied {
		t.Error("blocked domain should be denied")
	}
}

func TestEvaluateToolActionAllowed(t *testing.T) {
	d := EvaluateToolAction(EstopState{}, "fetch", "example.com")
	if d.Denied {
		t.Errorf("expected allowed action, got denied: %s", d.Reason)
	}
}
