package core

import "runtime"

// DefaultSampleRate is the rate assumed for raw PCM that carries no header.
const DefaultSampleRate = 44100

// ProgressFunc is notified after a block has been processed.
// index is the block position in the input, done the number of blocks
// finished so far (including this one) and total the number of blocks.
type ProgressFunc func(index, done, total int)

// ProcessorConfig defines common block processing settings.
type ProcessorConfig struct {
	SampleRate float64
	Workers    int
	Progress   ProgressFunc
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline batch use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: DefaultSampleRate,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

// WithSampleRate sets the sample rate used to map bins to Hz.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithWorkers sets the number of blocks processed concurrently.
func WithWorkers(workers int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if workers > 0 {
			cfg.Workers = workers
		}
	}
}

// WithProgress installs a per-block progress callback.
// Calls are serialized; the callback never runs concurrently with itself.
func WithProgress(fn ProgressFunc) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.Progress = fn
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
