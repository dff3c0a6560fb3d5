// Package estop implements the emergency-stop state machine: engage/resume
// transitions over a persisted EstopState, domain/tool pattern matching for
// tool-call enforcement, and an OTP gate on resume.
package estop

import (
	"sort"
	"time"
)

// EstopState is the persisted emergency-stop posture. is_engaged() is true
// iff any field differs from its zero value.
type EstopState struct {
	KillAll        bool      `json:"kill_all"`
	NetworkKill    bool      `json:"network_kill"`
	BlockedDomains []string  `json:"blocked_domains"`
	FrozenTools    []string  `json:"frozen_tools"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// IsEngaged reports whether any restriction is currently active.
func (s EstopState) IsEngaged() bool {
	return s.KillAll || s.NetworkKill || len(s.BlockedDomains) > 0 || len(s.FrozenTools) > 0
}

// EngageLevel is the target of an engage() transition.
type EngageLevel struct {
	KillAll     bool
	NetworkKill bool
	Domains     []string
	Tools       []string
}

// ResumeSelector is the target of a resume() transition.
type ResumeSelector struct {
	KillAll bool
	Network bool
	Domains []string
	Tools   []string
}

// Engage applies an EngageLevel on top of the current state: kill_all and
// network_kill are set (never cleared by engage), and domains/tools union
// in. Always stamps UpdatedAt.
func Engage(current EstopState, level EngageLevel, now time.Time) EstopState {
	next := current
	if level.KillAll {
		next.KillAll = true
	}
	if level.NetworkKill {
		next.NetworkKill = true
	}
	next.BlockedDomains = unionSorted(next.BlockedDomains, level.Domains)
	next.FrozenTools = unionSorted(next.FrozenTools, level.Tools)
	next.UpdatedAt = now
	return next
}

// Resume applies a ResumeSelector: KillAll selector resets to the default
// empty state; Network clears network_kill; Domains/Tools subtract the
// named entries. Always stamps UpdatedAt (except the full reset, which
// starts from zero).
func Resume(current EstopState, selector ResumeSelector, now time.Time) EstopState {
	if selector.KillAll {
		return EstopState{}
	}
	next := current
	if selector.Network {
		next.NetworkKill = false
	}
	next.BlockedDomains = subtract(next.BlockedDomains, selector.Domains)
	next.FrozenTools = subtract(next.FrozenTools, selector.Tools)
	next.UpdatedAt = now
	return next
}

func unionSorted(existing, add []string) []string {
	set := make(map[string]bool, len(existing)+len(add))
	for _, v := range existing {
		set[v] = true
	}
	for _, v := range add {
		set[v] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func subtract(existing, remove []string) []string {
	removeSet := make(map[string]bool, len(remove))
	for _, v := range remove {
		removeSet[v] = true
	}
	var out []string
	for _, v := range existing {
		if !removeSet[v] {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
