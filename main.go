package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var (
	errInvalidCount = errors.New("--count must be a positive integer")
	errNoRecords    = errors.New("no data to process")
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		tty:       isTerminal(os.Stderr),
		getenv:    os.Getenv,
		newCaller: newCaller,
		sleep:     sleepContext,
		now:       time.Now,
	}

	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	stdout    io.Writer
	stderr    io.Writer
	tty       bool
	getenv    func(string) string
	newCaller func(context.Context, Config) (Caller, error)
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
}

type flags struct {
	count      int
	configPath string
	dataDir    string
	outputDir  string
	chunkSize  int
	delay      time.Duration
	provider   string
	inputMode  string
	debug      bool
}

func (a *app) rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "respbatch",
		Short:         "Send JSON records to a language model in batches and save the merged reply",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	fl := cmd.Flags()
	fl.IntVar(&f.count, "count", 0, "number of records to process (default all)")
	fl.StringVar(&f.configPath, "config", "", "YAML config file")
	fl.StringVar(&f.dataDir, "data-dir", "", "directory of JSON array files (default ./data)")
	fl.StringVar(&f.outputDir, "output-dir", "", "directory for result files (default ./output)")
	fl.IntVar(&f.chunkSize, "chunk-size", 0, "records per API call (default 100)")
	fl.DurationVar(&f.delay, "delay", 0, "pause between API calls (default 1s)")
	fl.StringVar(&f.provider, "provider", "", "model provider: openai or gemini")
	fl.StringVar(&f.inputMode, "input-mode", "", "request input: message, string or none")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging")

	return cmd
}

func (a *app) run(cmd *cobra.Command, f flags) error {
	ctx := cmd.Context()
	fl := cmd.Flags()

	if fl.Changed("count") && f.count <= 0 {
		return errInvalidCount
	}

	cfg, err := loadConfig(f.configPath, a.getenv)
	if err != nil {
		return err
	}
	if fl.Changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if fl.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if fl.Changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	if fl.Changed("delay") {
		cfg.Delay = f.delay
	}
	if fl.Changed("provider") {
		cfg.Provider = Provider(f.provider)
	}
	if fl.Changed("input-mode") {
		cfg.InputMode = InputMode(f.inputMode)
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}

	log := newLogger(a.stderr, cfg.LogLevel, a.tty)

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	var batches [][]json.RawMessage
	items := 0
	if cfg.InputMode.loadsData() {
		records, files, err := loadRecords(cfg.DataDir, log)
		if err != nil {
			return err
		}
		log.Info().Int("files", files).Int("records", len(records)).Str("dir", cfg.DataDir).Msg("data loaded")

		if fl.Changed("count") {
			if f.count < len(records) {
				records = records[:f.count]
			} else if f.count > len(records) {
				log.Warn().Int("requested", f.count).Int("available", len(records)).Msg("fewer records than requested")
			}
		}
		if len(records) == 0 {
			return errNoRecords
		}

		items = len(records)
		batches = chunk(records, cfg.ChunkSize)
	} else {
		batches = [][]json.RawMessage{nil}
	}

	caller, err := a.newCaller(ctx, cfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("provider", string(cfg.Provider)).
		Str("input", string(cfg.InputMode)).
		Int("items", items).
		Int("batches", len(batches)).
		Msg("starting")

	d := newDispatcher(caller, cfg.Delay, newProgressBar(a.stderr, a.tty), log)
	d.sleep = a.sleep

	start := time.Now()
	responses, err := d.send(ctx, batches)
	if err != nil {
		return err
	}

	merged, err := mergeResponses(responses)
	if err != nil {
		return err
	}

	usage := merged.usage()
	log.Info().
		Int("batches", len(responses)).
		Int64("input_tokens", intField(usage, "input_tokens")).
		Int64("output_tokens", intField(usage, "output_tokens")).
		Int64("total_tokens", intField(usage, "total_tokens")).
		Dur("elapsed", time.Since(start)).
		Msg("all batches done")

	files, err := writeResults(cfg.OutputDir, merged, items, a.now())
	if err != nil {
		log.Error().Err(err).Msg("could not save results")
	}
	if files.JSON != "" {
		printSaved(a.stdout, files)
	}

	return nil
}
