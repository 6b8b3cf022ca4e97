// Package config holds the YAML run configuration shared by the sft commands.
package config

import (
	"log/slog"

	"github.com/cwbudde/algo-sft/dsp/core"
)

// LogLevel controls log verbosity for the commands.
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

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the top-level run configuration.
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Workers bounds the number of blocks processed concurrently.
	// Zero selects GOMAXPROCS.
	Workers int `yaml:"workers"`

	// SampleRate is used for reporting bin frequencies in Hz and for
	// WAV output. Raw input carries no rate of its own.
	SampleRate float64 `yaml:"sample_rate"`

	// Input and Output are the default paths of the roundtrip command.
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Precision is the spectra file value width in bits, 32 or 16.
	Precision int `yaml:"precision"`
}

// Default returns the configuration used when no file is given. It
// reproduces the fixed data.raw to output.raw round trip.
func Default() *Config {
	return &Config{
		LogLevel:   LogInfo,
		SampleRate: core.DefaultSampleRate,
		Input:      "data.raw",
		Output:     "output.raw",
		Precision:  32,
	}
}

// ProcessorOptions converts the configuration into dsp processor options.
func (c *Config) ProcessorOptions() []core.ProcessorOption {
	opts := []core.ProcessorOption{core.WithSampleRate(c.SampleRate)}
	if c.Workers > 0 {
		opts = append(opts, core.WithWorkers(c.Workers))
	}
	return opts
}
