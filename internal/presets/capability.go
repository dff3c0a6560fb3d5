package presets

import (
	"encoding/json"
	"fmt"
	"os"
)

// capabilityDocumentSchemaVersion is the only external capability rules
// schema version this planner accepts.
const capabilityDocumentSchemaVersion = 1

// builtinCapabilityRules is the built-in capability graph the intent
// planner runs against before any external rules file is merged in.
var builtinCapabilityRules = []CapabilityRule{
	{
		CapabilityID:  "workspace_exec",
		PositiveTerms: []string{"run", "execute", "shell", "command", "automation", "automate"},
		NegativeTerms: []string{"read only", "read-only", "dry run", "dry-run"},
		AddPacks:      []string{"workspace-exec"},
		Weight:        1.0,
	},
	{
		CapabilityID:  "browser",
		PositiveTerms: []string{"browser", "browse", "web", "scrape", "navigate"},
		NegativeTerms: nil,
		AddPacks:      []string{"browser"},
		Weight:        0.8,
	},
	{
		CapabilityID:  "network_egress",
		PositiveTerms: []string{"api", "webhook", "network", "http", "post", "call"},
		NegativeTerms: []string{"offline", "no network"},
		AddPacks:      []string{"network-egress"},
		Weight:        0.7,
	},
	{
		CapabilityID:  "channels",
		PositiveTerms: []string{"telegram", "discord", "messaging", "channel", "notify"},
		NegativeTerms: nil,
		AddPacks:      []string{"channels"},
		Weight:        0.6,
	},
	{
		CapabilityID:  "peripherals",
		PositiveTerms: []string{"hardware", "smart-home", "smart home", "device", "peripheral"},
		NegativeTerms: nil,
		AddPacks:      []string{"peripherals"},
		Weight:        0.6,
	},
	{
		CapabilityID:  "update",
		PositiveTerms: []string{"update", "upgrade", "self-update", "release"},
		NegativeTerms: []string{"no update", "no-update"},
		AddPacks:      []string{"update"},
		Weight:        0.9,
	},
}

// capabilityRulesDocument is the external rules file's on-disk schema.
type capabilityRulesDocument struct {
	SchemaVersion int              `json:"schema_version"`
	Rules         []CapabilityRule `json:"rules"`
}

// ResolvedCapabilities is builtin rules merged with every external file,
// plus the provenance trail used in reports.
type ResolvedCapabilities struct {
	Rules   []CapabilityRule
	Sources []string
}

// ResolveIntentCapabilities merges the built-in CapabilityRules with each
// external rules file. Merge semantics: by capability_id, the last file
// wins on a collision; non-colliding ids union in. sources starts with
// "builtin", then each file path in order.
func ResolveIntentCapabilities(files []string) (ResolvedCapabilities, error) {
	byID := make(map[string]CapabilityRule, len(builtinCapabilityRules))
	order := make([]string, 0, len(builtinCapabilityRules))
	for _, r := range builtinCapabilityRules {
		byID[r.CapabilityID] = r
		order = append(order, r.CapabilityID)
	}
	sources := []string{"builtin"}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return ResolvedCapabilities{}, fmt.Errorf("read capabilities file %s: %w", path, err)
		}
		var doc capabilityRulesDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return ResolvedCapabilities{}, fmt.Errorf("parse capabilities file %s: %w", path, err)
		}
		if doc.SchemaVersion != capabilityDocumentSchemaVersion {
			return ResolvedCapabilities{}, fmt.Errorf(
				"capabilities file %s: unsupported schema_version %d (expected %d)",
				path, doc.SchemaVersion, capabilityDocumentSchemaVersion)
		}
		for _, r := range doc.Rules {
			if _, exists := byID[r.CapabilityID]; !exists {
				order = append(order, r.CapabilityID)
			}
			byID[r.CapabilityID] = r
		}
		sources = append(sources, path)
	}

	rules := make([]CapabilityRule, 0, len(order))
	for _, id := range order {
		rules = append(rules, byID[id])
	}
	return ResolvedCapabilities{Rules: rules, Sources: sources}, nil
}
