package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.json")

	cfg := DefaultConfig()
	cfg.DBPath = "/var/lib/miniplan/plan.db"
	cfg.Gantt.DayWidth = 2
	cfg.StoreRetry.MaxInterval = Duration(3 * time.Second)

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	if !strings.Contains(string(data), `"max_interval": "3s"`) {
		t.Errorf("expected durations written as strings, got:\n%s", data)
	}

	loaded, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", cfg, loaded)
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	first := DefaultConfig()
	first.TimeUnit = "weeks"
	if err := Save(first, path); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := DefaultConfig()
	second.TimeUnit = "hours"
	if err := Save(second, path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := Load("", path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TimeUnit != "hours" {
		t.Errorf("expected 'hours', got %q", loaded.TimeUnit)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Gantt.DayWidth = 0
	err := Save(cfg, path)
	if err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "gantt.day_width") {
		t.Errorf("error %q doesn't name the bad field", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected no file to be written, stat err: %v", statErr)
	}
}
