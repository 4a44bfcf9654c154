package relay

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8087" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PARLOR_SPACE_RELAY_HTTP_ADDR", "env-relay")

	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "env-relay" {
		t.Fatalf("expected env http addr, got %q", cfg.HTTPAddr)
	}

	fs = flag.NewFlagSet("relay", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-http-addr", "flag-relay"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-relay" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
}
