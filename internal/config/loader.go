package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/cwbudde/algo-safe/dsp/window"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Keys missing from the file keep their [Default] values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Plugin
	if cfg.Plugin.Name == "" {
		errs = append(errs, errors.New("plugin.name is required"))
	}
	if cfg.Plugin.Code == "" {
		errs = append(errs, errors.New("plugin.code is required"))
	}

	// Audio
	if cfg.Audio.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %g must be >= 0", cfg.Audio.SampleRate))
	}
	if cfg.Audio.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("audio.block_size %d must be > 0", cfg.Audio.BlockSize))
	}
	if cfg.Audio.ControlRateHz <= 0 {
		errs = append(errs, fmt.Errorf("audio.control_rate_hz %g must be > 0", cfg.Audio.ControlRateHz))
	}

	// Analysis
	a := cfg.Analysis
	if a.CaptureMS <= 0 {
		errs = append(errs, fmt.Errorf("analysis.capture_ms %d must be > 0", a.CaptureMS))
	}
	if a.FrameSize < 2 || a.FrameSize&(a.FrameSize-1) != 0 {
		errs = append(errs, fmt.Errorf("analysis.frame_size %d must be a power of two >= 2", a.FrameSize))
	}
	if a.StepSize <= 0 {
		errs = append(errs, fmt.Errorf("analysis.step_size %d must be > 0", a.StepSize))
	} else if a.FrameSize > 0 && a.StepSize > a.FrameSize {
		slog.Warn("analysis.step_size exceeds frame_size; samples between frames are skipped",
			"step_size", a.StepSize, "frame_size", a.FrameSize)
	}
	if _, err := window.ParseType(a.Window); err != nil {
		errs = append(errs, fmt.Errorf("analysis.window: %w", err))
	}
	if a.IntegrityInterval <= 0 {
		errs = append(errs, fmt.Errorf("analysis.integrity_interval %s must be > 0", a.IntegrityInterval))
	}
	if a.ShutdownGrace <= 0 {
		errs = append(errs, fmt.Errorf("analysis.shutdown_grace %s must be > 0", a.ShutdownGrace))
	}

	// Storage
	if cfg.Storage.DataDir == "" {
		errs = append(errs, errors.New("storage.data_dir is required"))
	}
	if !cfg.Storage.Lock.IsValid() {
		errs = append(errs, fmt.Errorf("storage.lock %q is invalid; valid values: process, file", cfg.Storage.Lock))
	}

	// Remote
	errs = append(errs, validateURL("remote.upload_url", cfg.Remote.UploadURL, "http", "https", "ws", "wss")...)
	errs = append(errs, validateURL("remote.lookup_url", cfg.Remote.LookupURL, "http", "https")...)
	if cfg.Remote.Timeout < 0 {
		errs = append(errs, fmt.Errorf("remote.timeout %s must be >= 0", cfg.Remote.Timeout))
	}
	if cfg.Remote.UploadURL == "" && cfg.Remote.LookupURL != "" {
		slog.Warn("remote.lookup_url is set without remote.upload_url; recordings cannot be sent to the server")
	}

	return errors.Join(errs...)
}

func validateURL(key, raw string, schemes ...string) []error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return []error{fmt.Errorf("%s: %w", key, err)}
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return []error{fmt.Errorf("%s scheme %q is not supported", key, u.Scheme)}
}
