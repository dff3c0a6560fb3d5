package estop

import (
	"testing"
	"time"
)

var fixedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestIsEngagedZeroValue(t *testing.T) {
	if (EstopState{}).IsEngaged() {
		t.Error("zero-value state should not be engaged")
	}
}

func TestEngageKillAll(t *testing.T) {
	next := Engage(EstopState{}, EngageLevel{KillAll: true}, fixedTime)
	if !next.KillAll || !next.IsEngaged() {
		t.Errorf("expected kill_all engaged, got %+v", next)
	}
	if !next.UpdatedAt.Equal(fixedTime) {
		t.Errorf("expected updated_at stamped, got %v", next.UpdatedAt)
	}
}

func TestEngageNetworkKill(t *testing.T) {
	next := Engage(EstopState{}, EngageLevel{NetworkKill: true}, fixedTime)
	if !next.NetworkKill {
		t.Error("expected network_kill engaged")
	}
	if next.KillAll {
		t.Error("network_kill should not set kill_all")
	}
}

func TestEngageDomainBlockUnion(t *testing.T) {
	state := Engage(EstopState{}, EngageLevel{Domains: []string{"a.com"}}, fixedTime)
	state = Engage(state, EngageLevel{Domains: []string{"b.com"}}, fixedTime)
	if len(state.BlockedDomains) != 2 {
		t.Fatalf("got %v, want 2 domains", state.BlockedDomains)
	}
}

func TestEngageToolFreezeUnion(t *testing.T) {
	state := Engage(EstopState{}, EngageLevel{Tools: []string{"shell"}}, fixedTime)
	state = Engage(state, EngageLevel{Tools: []string{"browser"}}, fixedTime)
	if len(state.FrozenTools) != 2 {
		t.Fatalf("got %v, want 2 tools", state.FrozenTools)
	}
}

func TestResumeKillAllResetsEverything(t *testing.T) {
	state := EstopState{KillAll: true, NetworkKill: true, BlockedDomains: []string{"a.com"}, FrozenTools: []string{"shell"}}
	next := Resume(state, ResumeSelector{KillAll: true}, fixedTime)
	if next.IsEngaged() {
		t.Errorf("expected fully reset state, got %+v", next)
	}
}

func TestResumeNetworkOnly(t *testing.T) {
	state := EstopState{NetworkKill: true, KillAll: true}
	next := Resume(state, ResumeSelector{Network: true}, fixedTime)
	if next.NetworkKill {
		t.Error("expected network_kill cleared")
	}
	if !next.KillAll {
		t.Error("kill_all should be untouched by a network-only resume")
	}
}

func TestResumeDomainsSubtract(t *testing.T) {
	state := EstopState{BlockedDomains: []string{"a.com", "b.com", "c.com"}}
	next := Resume(state, ResumeSelector{Domains: []string{"b.com"}}, fixedTime)
	want := []string{"a.com", "c.com"}
	if len(next.BlockedDomains) != len(want) {
		t.Fatalf("got %v, want %v", next.BlockedDomains, want)
	}
	for i, d := range want {
		if next.BlockedDomains[i] != d {
			t.Errorf("got %v, want %v", next.BlockedDomains, want)
		}
	}
}

func TestResumeToolsSubtract(t *testing.T) {
	state := EstopState{FrozenTools: []string{"shell", "browser"}}
	next := Resume(state, ResumeSelector{Tools: []string{"shell"}}, fixedTime)
	if len(next.FrozenTools) != 1 || next.FrozenTools[0] != "browser" {
		t.Errorf("got %v, want [browser]", next.FrozenTools)
	}
}
