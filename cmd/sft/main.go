// Command sft analyzes and resynthesizes audio with the sine-fit transform.
//
// Usage:
//
//	sft [global flags] [command] [command flags]
//
// Without a command it runs roundtrip, which reads data.raw (32-bit float
// mono samples), analyzes it block by block and writes the additive
// resynthesis to output.raw.
//
// Examples:
//
//	sft
//	sft roundtrip -in speech.wav -out speech_sft.wav
//	sft -workers 4 analyze -in data.raw -out data.sft -precision 16
//	sft synth -in data.sft -out output.raw
//	sft view -in data.raw -block 3 -table
//	sft compare -a data.raw -b output.raw
//	sft gen -out data.raw -bin 12 -amp 0.5 -blocks 8 -noise 0.05
//
// Exit status is 1 when the input cannot be opened, 2 when it cannot be
// inspected, 3 when it is empty and 4 on any other failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-sft/internal/config"
	"github.com/cwbudde/algo-sft/pcm"
)

const (
	exitOK      = 0
	exitOpen    = 1
	exitStat    = 2
	exitEmpty   = 3
	exitFailure = 4
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"roundtrip", "analyze and resynthesize in one pass (default)", runRoundtrip},
	{"analyze", "write the spectra of an input to a .sft file", runAnalyze},
	{"synth", "resynthesize samples from a .sft file", runSynth},
	{"view", "print the amplitudes of one block", runView},
	{"compare", "report similarity between two signals", runCompare},
	{"gen", "generate a test signal", runGen},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("sft", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to a YAML run configuration")
	logLevel := global.String("log-level", "", "log level: debug, info, warn, error")
	workers := global.Int("workers", 0, "blocks processed concurrently (0 = GOMAXPROCS)")
	global.Usage = func() { usage(global) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg, err := loadConfig(*configPath, config.LogLevel(*logLevel), *workers)
	if err != nil {
		fmt.Fprintf(stderr, "sft: %v\n", err)
		return exitFailure
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level()}))
	slog.SetDefault(logger)

	name := "roundtrip"
	rest := global.Args()
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "sft: unknown command %q\n\n", name)
		global.Usage()
		return exitFailure
	}

	a := &app{cfg: cfg, log: logger.With("command", name), stdout: stdout, stderr: stderr}
	if err := cmd.run(ctx, a, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		logger.Error("command failed", "command", name, "err", err)
		return exitCode(err)
	}
	return exitOK
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: sft [global flags] [command] [command flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nRun 'sft <command> -h' for command flags.\n")
}

// loadConfig reads the optional configuration file and applies flag overrides.
func loadConfig(path string, logLevel config.LogLevel, workers int) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.ReadFile(path); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if workers != 0 {
		cfg.Workers = workers
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var openErr *pcm.OpenError
	var statErr *pcm.StatError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &openErr):
		return exitOpen
	case errors.As(err, &statErr):
		return exitStat
	case errors.Is(err, pcm.ErrEmptyInput):
		return exitEmpty
	default:
		return exitFailure
	}
}
