package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Site.BaseURL != "https://aion2.plaync.com/ko-kr" {
		t.Fatalf("unexpected base url %q", cfg.Site.BaseURL)
	}
	if cfg.Browser.PageLoadTimeout != 30*time.Second {
		t.Fatalf("unexpected page load timeout %v", cfg.Browser.PageLoadTimeout)
	}
	if cfg.Browser.ActionSettle != 500*time.Millisecond {
		t.Fatalf("unexpected action settle %v", cfg.Browser.ActionSettle)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %v", cfg.Cache.TTL)
	}
	if id := cfg.Site.Servers.Resolve("Siel"); id != "2001" {
		t.Fatalf("Siel resolved to %q", id)
	}
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("AION2_SERVER_IDS", "Nezakan=1003, broken, Siel=1001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if id := cfg.Site.Servers.Resolve("Nezakan"); id != "1003" {
		t.Fatalf("Nezakan resolved to %q", id)
	}
	if id := cfg.Site.Servers.Resolve("Siel"); id != "1001" {
		t.Fatalf("override not applied, Siel resolved to %q", id)
	}
}

func TestLoadRejectsUnknownDefaultServer(t *testing.T) {
	t.Setenv("AION2_DEFAULT_SERVER", "Nowhere")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown default server")
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("PAGE_LOAD_TIMEOUT_MS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero page load timeout")
	}
}

func TestParseKeyValueList(t *testing.T) {
	got := parseKeyValueList("a=1,=2,b=,c = 3")
	if len(got) != 2 || got["a"] != "1" || got["c"] != "3" {
		t.Fatalf("unexpected result %v", got)
	}
}
