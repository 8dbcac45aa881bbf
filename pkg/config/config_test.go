package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/vidcam/pkg/ports"
)

func TestDefaults_AreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "vidcam.yaml")

	cfg := Defaults()
	cfg.URL = "rtsp://10.0.0.5/live"
	cfg.Window = WindowConfig{X: 40, Y: 60, Width: 320, Height: 240}
	cfg.CaptureInterval = 2 * time.Second
	cfg.AutoCompile = false

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidcam.yaml")
	yaml := "url: rtsp://cam/one\ncapture_interval: 5s\nwindow:\n  width: 800\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.URL != "rtsp://cam/one" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.CaptureInterval != 5*time.Second {
		t.Errorf("CaptureInterval = %v", cfg.CaptureInterval)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 200 {
		t.Errorf("Window = %+v", cfg.Window)
	}
	if cfg.Width != 640 || cfg.MaxCaptureErrors != 5 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidcam.yaml")
	if err := os.WriteFile(path, []byte("url: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_WritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidcam.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults to be written: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty url", func(c *Config) { c.URL = "" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero reconnect delay", func(c *Config) { c.ReconnectDelay = 0 }},
		{"zero capture interval", func(c *Config) { c.CaptureInterval = 0 }},
		{"zero max errors", func(c *Config) { c.MaxCaptureErrors = 0 }},
		{"opacity above one", func(c *Config) { c.BaseOpacity = 1.5 }},
		{"zero fps", func(c *Config) { c.TimelapseFPS = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestPreviewFile(t *testing.T) {
	cfg := Defaults()
	cfg.CaptureDir = filepath.Join("data", "captures")
	if got, want := cfg.PreviewFile(), filepath.Join("data", "preview.png"); got != want {
		t.Errorf("PreviewFile = %q, want %q", got, want)
	}

	cfg.PreviewPath = "/tmp/live.png"
	if got := cfg.PreviewFile(); got != "/tmp/live.png" {
		t.Errorf("PreviewFile = %q", got)
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.URL = "rtsp://cam"
	cfg.ReconnectDelay = 3 * time.Second
	cfg.BaseOpacity = 0.4

	dec := cfg.ToDecoderOptions()
	if dec.URL != "rtsp://cam" || dec.Width != 640 || dec.Height != 480 || dec.ReconnectDelay != 3*time.Second {
		t.Errorf("ToDecoderOptions = %+v", dec)
	}
	if dec.Format != ports.NativePixelFormat {
		t.Errorf("Format = %v", dec.Format)
	}

	co := cfg.ToCaptureOptions()
	if co.Interval != time.Second || co.MaxErrors != 5 {
		t.Errorf("ToCaptureOptions = %+v", co)
	}

	pv := cfg.ToPreviewOptions()
	if pv.Width != 300 || pv.Height != 200 || pv.Opacity != 0.4 {
		t.Errorf("ToPreviewOptions = %+v", pv)
	}

	if tl := cfg.ToTimelapseOptions(); tl.FPS != 30 {
		t.Errorf("ToTimelapseOptions = %+v", tl)
	}
}
