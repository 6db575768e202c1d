package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ironsheep/notecolor-mcp/internal/detection"
)

func TestLoad_NoFileMatchesDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v\nwant %+v", cfg, Default())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notecolor.yaml")
	yaml := `
server:
  log_mode: production
pages:
  workers: 3
detector:
  ink_cutoff: 150
  staff_thresholds: [100, 180]
  dedupe_radius: 0.4
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.LogMode != "production" || cfg.Pages.Workers != 3 {
		t.Errorf("server/pages: %+v %+v", cfg.Server, cfg.Pages)
	}
	d := cfg.Detector
	if d.InkCutoff != 150 || d.DedupeRadius != 0.4 {
		t.Errorf("ink_cutoff %d dedupe_radius %v", d.InkCutoff, d.DedupeRadius)
	}
	if !reflect.DeepEqual(d.StaffThresholds, []int{100, 180}) {
		t.Errorf("staff_thresholds = %v", d.StaffThresholds)
	}
	// Keys absent from the file keep their defaults.
	if want := detection.DefaultParams().GateWeight; d.GateWeight != want {
		t.Errorf("gate_weight = %v, want %v", d.GateWeight, want)
	}
	if cfg.Pages.CacheSize != Default().Pages.CacheSize {
		t.Errorf("cache_size = %d", cfg.Pages.CacheSize)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NOTECOLOR_DETECTOR_SLOT_BIN", "0.75")
	t.Setenv("NOTECOLOR_PAGES_WORKERS", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Detector.SlotBin != 0.75 || cfg.Pages.Workers != 2 {
		t.Errorf("slot_bin %v workers %d", cfg.Detector.SlotBin, cfg.Pages.Workers)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: want error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  log_mode: verbose\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unknown log mode: want error")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// A named file that does not load is fatal: no settings come back.
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server:\n  log_mode: verbose\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, err := LoadOrDefault(path); cfg != nil || err == nil {
		t.Errorf("bad file: cfg %v, err %v", cfg, err)
	}
	if cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml")); cfg != nil || err == nil {
		t.Errorf("missing file: cfg %v, err %v", cfg, err)
	}

	// Without a file a broken override falls back to the defaults.
	t.Setenv("NOTECOLOR_SERVER_LOG_MODE", "verbose")
	cfg, err := LoadOrDefault("")
	if err == nil {
		t.Error("bad override: want the error reported")
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("bad override: cfg = %+v, want defaults", cfg)
	}
}
