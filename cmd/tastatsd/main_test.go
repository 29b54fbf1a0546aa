package main

import (
	"testing"
)

func TestDaemonCommandFlags(t *testing.T) {
	cmd := newDaemonCommand()
	if cmd.Use != "tastatsd" {
		t.Fatalf("unexpected command use: %q", cmd.Use)
	}
	for _, name := range []string{"config", "socket", "log-level"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("expected --%s flag to be registered", name)
		}
	}
}

func TestDaemonCommandRejectsMissingConfig(t *testing.T) {
	cmd := newDaemonCommand()
	cmd.SetArgs([]string{"--config", "/nonexistent/tastats.toml"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}
