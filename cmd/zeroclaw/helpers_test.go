package main

import "testing"

func TestRequireDryRunForJSON(t *testing.T) {
	cases := []struct {
		name    string
		json    bool
		dryRun  bool
		wantErr bool
	}{
		{"neither", false, false, false},
		{"dry run only", false, true, false},
		{"json with dry run", true, true, false},
		{"json without dry run", true, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := requireDryRunForJSON("preset apply", tc.json, tc.dryRun)
			if (err != nil) != tc.wantErr {
				t.Errorf("got err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestIsCleanUserError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"preset apply --json requires --dry-run", true},
		{"unknown preset id \"bogus\"", true},
		{"no pending oauth login found for gemini", true},
		{"something completely unexpected blew up", false},
	}
	for _, tc := range cases {
		if got := isCleanUserError(tc.msg); got != tc.want {
			t.Errorf("isCleanUserError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}
