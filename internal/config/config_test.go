package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if C.Addr != ":8080" {
		t.Errorf("addr default: %q", C.Addr)
	}
	if C.FormTTL != 336*time.Hour {
		t.Errorf("form ttl default: %v", C.FormTTL)
	}
	if len(C.ChaseOffsets) != 2 || C.ChaseOffsets[0] != 168*time.Hour || C.ChaseOffsets[1] != 48*time.Hour {
		t.Errorf("chase offsets default: %v", C.ChaseOffsets)
	}
	if !C.WatcherEnabled {
		t.Errorf("watcher should default on")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("FORM_TTL", "24h")
	t.Setenv("WATCHER_ENABLED", "false")
	t.Setenv("CHASE_OFFSETS", "1h")

	if err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if C.Addr != ":9090" || C.FormTTL != 24*time.Hour || C.WatcherEnabled {
		t.Errorf("overrides not applied: %+v", C)
	}
	if len(C.ChaseOffsets) != 1 || C.ChaseOffsets[0] != time.Hour {
		t.Errorf("chase offsets: %v", C.ChaseOffsets)
	}
}
