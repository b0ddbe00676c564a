// Package config provides the configuration schema and loader for the
// safeannotate tool.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LockMode selects how analysis runs are serialised.
type LockMode string

const (
	// LockProcess serialises runs of every processor in this process.
	LockProcess LockMode = "process"
	// LockFile additionally serialises runs across processes sharing the
	// data directory.
	LockFile LockMode = "file"
)

// IsValid reports whether m is a recognised lock mode.
func (m LockMode) IsValid() bool {
	return m == LockProcess || m == LockFile
}

// Config is the root configuration.
type Config struct {
	Plugin   PluginConfig   `yaml:"plugin"`
	Audio    AudioConfig    `yaml:"audio"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	Remote   RemoteConfig   `yaml:"remote"`
	LogLevel LogLevel       `yaml:"log_level"`
}

// PluginConfig identifies the plugin in stored and uploaded records.
type PluginConfig struct {
	Name    string `yaml:"name"`
	Code    string `yaml:"code"`
	Version string `yaml:"version"`
	Format  string `yaml:"format"`
}

// AudioConfig holds the stream settings used when rendering files.
type AudioConfig struct {
	// SampleRate overrides the file's sample rate when non-zero.
	SampleRate    float64 `yaml:"sample_rate"`
	BlockSize     int     `yaml:"block_size"`
	ControlRateHz float64 `yaml:"control_rate_hz"`
}

// AnalysisConfig controls recording length and feature extraction.
type AnalysisConfig struct {
	CaptureMS         int           `yaml:"capture_ms"`
	FrameSize         int           `yaml:"frame_size"`
	StepSize          int           `yaml:"step_size"`
	Window            string        `yaml:"window"`
	IntegrityInterval time.Duration `yaml:"integrity_interval"`
	ShutdownGrace     time.Duration `yaml:"shutdown_grace"`
}

// StorageConfig locates the local semantic data file.
type StorageConfig struct {
	DataDir string   `yaml:"data_dir"`
	Lock    LockMode `yaml:"lock"`
}

// RemoteConfig locates the aggregation service. Empty URLs disable it.
type RemoteConfig struct {
	UploadURL string        `yaml:"upload_url"`
	LookupURL string        `yaml:"lookup_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Default returns the configuration used for keys absent from a file.
func Default() *Config {
	return &Config{
		Plugin: PluginConfig{
			Name:    "Tremolo",
			Code:    "Trem",
			Version: "1.0.0",
			Format:  "VST",
		},
		Audio: AudioConfig{
			BlockSize:     512,
			ControlRateHz: 64,
		},
		Analysis: AnalysisConfig{
			CaptureMS:         5000,
			FrameSize:         4096,
			StepSize:          4096,
			Window:            "hann",
			IntegrityInterval: 50 * time.Millisecond,
			ShutdownGrace:     4 * time.Second,
		},
		Storage: StorageConfig{
			DataDir: "SAFEPluginData",
			Lock:    LockProcess,
		},
		Remote: RemoteConfig{
			Timeout: 30 * time.Second,
		},
		LogLevel: LogInfo,
	}
}
