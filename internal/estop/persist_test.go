package estop

import "testing"

func TestLoadReturnsZeroStateWhenMissing(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())

	state, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if state.IsEngaged() {
		t.Error("expected disengaged zero state when no file exists")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("ZEROCLAW_CONFIG_DIR", t.TempDir())

	state := EstopState{NetworkKill: true, BlockedDomains: []string{"example.com"}}
	if err := Save(state); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.NetworkKill {
		t.Error("expected network_kill to survive round trip")
	}
	if len(loaded.BlockedDomains) != 1 || loaded.BlockedDomains[0] != "example.com" {
		t.Errorf("got %v", loaded.BlockedDomains)
	}
}
