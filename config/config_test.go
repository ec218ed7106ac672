package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"BROWSER_HEADLESS", "DROPDOWN_TIMEOUT", "PRICE_OUTPUT_STYLE", "ALLOWED_ORIGINS", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Browser.Headless {
		t.Error("browser should default to a visible window")
	}
	if cfg.Extractor.DropdownTimeout != 2*time.Second {
		t.Errorf("dropdown timeout = %v, want 2s", cfg.Extractor.DropdownTimeout)
	}
	if cfg.Extractor.OutputStyle != "paired" {
		t.Errorf("output style = %q, want paired", cfg.Extractor.OutputStyle)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("allowed origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BROWSER_HEADLESS", "true")
	t.Setenv("DROPDOWN_TIMEOUT", "1500ms")
	t.Setenv("BROWSER_VIEWPORT_WIDTH", "1600")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("RATE_LIMIT_PER_SECOND", "not-a-number")

	cfg := Load()
	if !cfg.Browser.Headless {
		t.Error("BROWSER_HEADLESS=true not applied")
	}
	if cfg.Extractor.DropdownTimeout != 1500*time.Millisecond {
		t.Errorf("dropdown timeout = %v", cfg.Extractor.DropdownTimeout)
	}
	if cfg.Browser.ViewportWidth != 1600 {
		t.Errorf("viewport width = %d", cfg.Browser.ViewportWidth)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("allowed origins = %v", got)
	}
	if cfg.Server.RateLimitPerSecond != 1 {
		t.Errorf("bad float should fall back to default, got %v", cfg.Server.RateLimitPerSecond)
	}
}

func TestInfluxEnabled(t *testing.T) {
	sc := SinkConfig{InfluxURL: "http://influx:8086", InfluxOrg: "home"}
	if sc.InfluxEnabled() {
		t.Error("bucket missing, should be disabled")
	}
	sc.InfluxBucket = "prices"
	if !sc.InfluxEnabled() {
		t.Error("should be enabled")
	}
}

func TestLoadFingerprints(t *testing.T) {
	fp, err := LoadFingerprints("")
	if err != nil {
		t.Fatal(err)
	}
	if fp.TargetOption != "No Medicare card" || fp.DataScriptID != "__NEXT_DATA__" {
		t.Errorf("unexpected defaults: %+v", fp)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "fp.yaml")
	body := []byte(`matcher: selector
target_option: "Concession card"
price_heading:
  selector: "[data-testid=price]"
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	fp, err = LoadFingerprints(path)
	if err != nil {
		t.Fatal(err)
	}
	if fp.Matcher != "selector" {
		t.Errorf("matcher = %q", fp.Matcher)
	}
	if fp.TargetOption != "Concession card" {
		t.Errorf("target option = %q", fp.TargetOption)
	}
	if fp.PriceHeading.Selector != "[data-testid=price]" {
		t.Errorf("heading selector = %q", fp.PriceHeading.Selector)
	}
	if len(fp.ConsentLabels) != 2 {
		t.Errorf("consent labels should keep defaults, got %v", fp.ConsentLabels)
	}
}

func TestLoadFingerprintsErrors(t *testing.T) {
	if _, err := LoadFingerprints(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("matcher: regex\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFingerprints(path); err == nil {
		t.Error("expected error for unknown matcher")
	}
}
