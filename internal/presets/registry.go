package presets

import "sort"

// builtinPacks is the code-embedded pack catalog. Pack ids are referenced
// by presets and by capability rules; both must stay in sync with this map.
var builtinPacks = map[string]Pack{
	"core": {
		ID:              "core",
		Description:     "Base conversational loop: no shell, no network egress, no peripherals.",
		BuildFeatures:   []string{"core"},
		CapabilityTerms: []string{"chat", "assistant", "basic"},
	},
	"workspace-read": {
		ID:              "workspace-read",
		Description:     "Read-only access to files inside the workspace root.",
		BuildFeatures:   []string{"workspace-read"},
		CapabilityTerms: []string{"read", "inspect", "search", "docs"},
	},
	"workspace-exec": {
		ID:                   "workspace-exec",
		Description:          "Execute shell commands confined to the workspace root.",
		BuildFeatures:        []string{"workspace-exec"},
		RequiresConfirmation: true,
		CapabilityTerms:      []string{"run", "execute", "shell", "command", "automation"},
	},
	"browser": {
		ID:              "browser",
		Description:     "Headless browser automation (navigation, scraping, form fill).",
		BuildFeatures:   []string{"browser"},
		CapabilityTerms: []string{"browser", "web", "scrape", "navigate"},
	},
	"network-egress": {
		ID:                   "network-egress",
		Description:          "Outbound network calls beyond the browser pack (APIs, webhooks).",
		BuildFeatures:        []string{"network-egress"},
		RequiresConfirmation: true,
		CapabilityTerms:      []string{"network", "api", "webhook", "http"},
	},
	"channels": {
		ID:              "channels",
		Description:     "Messaging channel integrations (Telegram, Discord, ...).",
		BuildFeatures:   []string{"channels"},
		CapabilityTerms: []string{"telegram", "discord", "messaging", "channel"},
	},
	"peripherals": {
		ID:              "peripherals",
		Description:     "Hardware peripheral control (smart-home, media devices).",
		BuildFeatures:   []string{"peripherals"},
		CapabilityTerms: []string{"hardware", "smart-home", "peripheral", "device"},
	},
	"update": {
		ID:                   "update",
		Description:          "Self-update: download and apply new binary releases.",
		BuildFeatures:        []string{"update"},
		RequiresConfirmation: true,
		CapabilityTerms:      []string{"update", "upgrade", "release"},
	},
}

// builtinPresets is the code-embedded preset catalog.
var builtinPresets = map[string]Preset{
	"minimal": {
		ID:          "minimal",
		Description: "Conversational core with read-only workspace access. Safest starting point.",
		Packs:       []string{"core", "workspace-read"},
	},
	"automation": {
		ID:          "automation",
		Description: "Adds workspace command execution and browser automation to minimal.",
		Packs:       []string{"core", "workspace-read", "workspace-exec", "browser"},
	},
	"full": {
		ID:          "full",
		Description: "Every shipped capability: automation plus channels, peripherals, network egress, and self-update.",
		Packs:       []string{"core", "workspace-read", "workspace-exec", "browser", "network-egress", "channels", "peripherals", "update"},
	},
}

// DefaultPresetID is the preset used when no explicit selection exists.
const DefaultPresetID = "minimal"

// PresetByID looks up a preset in the built-in catalog.
func PresetByID(id string) (Preset, error) {
	p, ok := builtinPresets[id]
	if !ok {
		return Preset{}, &UnknownPresetError{ID: id}
	}
	return p, nil
}

// PackByID looks up a pack in the built-in catalog.
func PackByID(id string) (Pack, error) {
	p, ok := builtinPacks[id]
	if !ok {
		return Pack{}, &UnknownPackError{ID: id}
	}
	return p, nil
}

// PackKnown reports whether id resolves in the pack registry.
func PackKnown(id string) bool {
	_, ok := builtinPacks[id]
	return ok
}

// ListPresets returns every built-in preset, sorted by id for stable output.
func ListPresets() []Preset {
	ids := make([]string, 0, len(builtinPresets))
	for id := range builtinPresets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Preset, 0, len(ids))
	for _, id := range ids {
		out = append(out, builtinPresets[id])
	}
	return out
}
