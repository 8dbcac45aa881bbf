// Package config loads and saves vidcam settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/vidcam/pkg/capture"
	"github.com/user/vidcam/pkg/decoder"
	"github.com/user/vidcam/pkg/ports"
	"github.com/user/vidcam/pkg/preview"
	"github.com/user/vidcam/pkg/timelapse"
)

// DefaultPath is the settings file used when none is given.
const DefaultPath = "vidcam.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid settings")

// Config represents the persisted vidcam settings.
type Config struct {
	// Stream
	URL            string        `yaml:"url"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	FFmpegPath     string        `yaml:"ffmpeg_path,omitempty"`

	// Capture
	CaptureDir       string        `yaml:"capture_dir"`
	CaptureInterval  time.Duration `yaml:"capture_interval"`
	MaxCaptureErrors int           `yaml:"max_capture_errors"`
	StampTime        bool          `yaml:"stamp_time"`
	JPEGQuality      int           `yaml:"jpeg_quality"`

	// Window
	Window      WindowConfig `yaml:"window"`
	BaseOpacity float64      `yaml:"base_opacity"`
	PreviewPath string       `yaml:"preview_path,omitempty"`

	// Timelapse
	AutoCompile  bool    `yaml:"auto_compile"`
	TimelapseDir string  `yaml:"timelapse_dir"`
	TimelapseFPS float64 `yaml:"timelapse_fps"`

	LogLevel string `yaml:"log_level"`
}

// WindowConfig is the preview window geometry.
type WindowConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		URL:            "rtsp://127.0.0.1:554/stream1",
		Width:          640,
		Height:         480,
		ReconnectDelay: decoder.DefaultReconnectDelay,

		CaptureDir:       "timelapse",
		CaptureInterval:  capture.DefaultInterval,
		MaxCaptureErrors: capture.DefaultMaxErrors,
		StampTime:        true,
		JPEGQuality:      90,

		Window:      WindowConfig{Width: 300, Height: 200},
		BaseOpacity: 0.05,

		AutoCompile:  true,
		TimelapseDir: "videos",
		TimelapseFPS: timelapse.DefaultFPS,

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToFile writes cfg as YAML, creating parent directories as needed.
func SaveToFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads path, or writes and returns the defaults when it does not exist.
func Load(path string) (Config, error) {
	cfg, err := LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Defaults()
		if err := SaveToFile(cfg, path); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	return cfg, err
}

// Validate reports the first invalid setting, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("%w: url is required", ErrInvalid)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.ReconnectDelay <= 0:
		return fmt.Errorf("%w: reconnect_delay must be positive", ErrInvalid)
	case c.CaptureInterval <= 0:
		return fmt.Errorf("%w: capture_interval must be positive", ErrInvalid)
	case c.MaxCaptureErrors < 1:
		return fmt.Errorf("%w: max_capture_errors must be at least 1", ErrInvalid)
	case c.BaseOpacity < 0 || c.BaseOpacity > 1:
		return fmt.Errorf("%w: base_opacity %.2f is outside 0..1", ErrInvalid, c.BaseOpacity)
	case c.TimelapseFPS <= 0:
		return fmt.Errorf("%w: timelapse_fps must be positive", ErrInvalid)
	}
	if ports.ParseLogLevel(c.LogLevel).String() != c.LogLevel {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// PreviewFile returns the preview output path, defaulting to preview.png
// beside the capture directory.
func (c Config) PreviewFile() string {
	if c.PreviewPath != "" {
		return c.PreviewPath
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.CaptureDir)), "preview.png")
}

// ToDecoderOptions converts Config to decoder.Options.
func (c Config) ToDecoderOptions() decoder.Options {
	return decoder.Options{
		URL:            c.URL,
		Width:          c.Width,
		Height:         c.Height,
		Format:         ports.NativePixelFormat,
		ReconnectDelay: c.ReconnectDelay,
	}
}

// ToCaptureOptions converts Config to capture.Options.
func (c Config) ToCaptureOptions() capture.Options {
	return capture.Options{
		Interval:  c.CaptureInterval,
		MaxErrors: c.MaxCaptureErrors,
	}
}

// ToPreviewOptions converts Config to preview.Options.
func (c Config) ToPreviewOptions() preview.Options {
	return preview.Options{
		Path:    c.PreviewFile(),
		Width:   c.Window.Width,
		Height:  c.Window.Height,
		Opacity: c.BaseOpacity,
	}
}

// ToTimelapseOptions converts Config to timelapse.Options.
func (c Config) ToTimelapseOptions() timelapse.Options {
	return timelapse.Options{FPS: c.TimelapseFPS}
}
