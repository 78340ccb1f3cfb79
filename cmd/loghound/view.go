package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"go.jacobcolvin.com/loghound/export"
	"go.jacobcolvin.com/loghound/ingest"
	"go.jacobcolvin.com/loghound/log"
	"go.jacobcolvin.com/loghound/metrics"
	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/store"
)

const formatTable = "table"

// ErrWriteOutput indicates the records could not be written.
var ErrWriteOutput = errors.New("write output")

type viewOptions struct {
	store        *store.Config
	format       string
	output       string
	metricsAddr  string
	defaultLevel string
	inputTags    []string
	all          bool
	compress     bool
	tui          bool
}

func newViewOptions() *viewOptions {
	return &viewOptions{
		store:        store.NewConfig(),
		format:       formatTable,
		defaultLevel: "info",
	}
}

func (o *viewOptions) registerFlags(flags *pflag.FlagSet) {
	o.store.RegisterFlags(flags)

	flags.StringVarP(&o.format, "format", "f", o.format,
		fmt.Sprintf("output format, one of: %s", append([]string{formatTable}, export.GetAllFormatStrings()...)))
	flags.StringVarP(&o.output, "output", "o", o.output, "write records to this file instead of stdout")
	flags.BoolVar(&o.compress, "compress", o.compress, "zstd-compress the output (not for table)")
	flags.BoolVar(&o.all, "all", o.all, "include records hidden by the filters")
	flags.StringVar(&o.defaultLevel, "default-level", o.defaultLevel, "level for input lines that name none")
	flags.StringSliceVar(&o.inputTags, "input-tag", o.inputTags, "tags added to every input line")
	flags.StringVar(&o.metricsAddr, "metrics-addr", o.metricsAddr, "serve Prometheus metrics on this address")
	flags.BoolVar(&o.tui, "tui", o.tui, "browse records interactively")
}

func (o *viewOptions) registerCompletions(cmd *cobra.Command) error {
	err := o.store.RegisterCompletions(cmd)
	if err != nil {
		return err
	}

	err = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		append([]string{formatTable}, export.GetAllFormatStrings()...), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering format completion: %w", err)
	}

	return nil
}

func newViewCmd(logCfg *log.Config) *cobra.Command {
	opts := newViewOptions()

	cmd := &cobra.Command{
		Use:   "view [flags] [file ...]",
		Short: "Load log lines and show the records that pass the filters",
		Long: `view reads log lines from the given files, or stdin when none are given or
a file is "-", into a bounded record store. Lines may be JSON objects with
level, msg and tags fields, or plain text optionally starting with a level
name. The records left after filtering are printed in the chosen format, or
browsed interactively with --tui.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), logCfg, opts, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.registerFlags(cmd.Flags())

	completionErr := opts.registerCompletions(cmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	return cmd
}

func runView(ctx context.Context, logCfg *log.Config, opts *viewOptions, args []string,
	stdin io.Reader, stdout, stderr io.Writer,
) error {
	format := opts.format
	if format != formatTable {
		_, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
	}

	logger, err := logCfg.NewLogger(stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var storeOpts []store.Option

	var m *metrics.Metrics
	if opts.metricsAddr != "" {
		m = metrics.New(true)
		storeOpts = append(storeOpts, store.WithObserver(m))
	}

	s, err := opts.store.NewStore(append(storeOpts, store.WithLogger(storeLogger(logger, opts.tui)))...)
	if err != nil {
		return err
	}

	defer s.Close()

	// The terminal belongs to the TUI, so diagnostics go into the store.
	if opts.tui {
		lvl, _ := log.ParseLevel(logCfg.Level)
		logger = slog.New(log.NewStoreHandler(s, lvl.SlogLevel(), "loghound"))
	}

	defLevel, err := s.Registry().MustResolve(opts.defaultLevel)
	if err != nil {
		return fmt.Errorf("default-level: %w", err)
	}

	reader := ingest.NewReader(s,
		ingest.WithLogger(logger),
		ingest.WithDefaultLevel(defLevel.ID()),
		ingest.WithTags(opts.inputTags...),
	)

	var wg sync.WaitGroup
	defer wg.Wait()

	if m != nil {
		wg.Go(func() {
			serveErr := m.Serve(ctx, opts.metricsAddr)
			if serveErr != nil {
				logger.Error("metrics server stopped", slog.Any("error", serveErr))
			}
		})
	}

	if opts.tui {
		// Not waited for: a blocked stdin read cannot be interrupted.
		go readInputs(ctx, reader, args, stdin, logger)

		_, err = tea.NewProgram(newModel(s), tea.WithContext(ctx)).Run()
		cancel()

		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run tui: %w", err)
		}

		return nil
	}

	readInputs(ctx, reader, args, stdin, logger)

	records := s.VisibleRecords()
	if opts.all {
		records = s.Records()
	}

	err = writeRecords(opts, records, stdout)
	cancel()

	return err
}

// storeLogger returns the logger for store diagnostics. Under the TUI they
// are discarded: stderr is hidden by the alt screen, and a store cannot log
// into itself while it holds its own lock.
func storeLogger(logger *slog.Logger, tui bool) *slog.Logger {
	if tui {
		return slog.New(slog.DiscardHandler)
	}

	return logger
}

func readInputs(ctx context.Context, reader *ingest.Reader, args []string, stdin io.Reader, logger *slog.Logger) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	for _, arg := range args {
		res, err := readInput(ctx, reader, arg, stdin)

		attrs := []any{
			slog.String("input", arg),
			slog.Int("lines", res.Lines),
			slog.Int("accepted", res.Accepted),
			slog.Int("rejected", res.Rejected),
		}
		if err != nil {
			logger.Error("read input", append(attrs, slog.Any("error", err))...)
			continue
		}

		logger.Debug("read input", attrs...)
	}
}

func readInput(ctx context.Context, reader *ingest.Reader, name string, stdin io.Reader) (ingest.Result, error) {
	if name == "-" {
		return reader.Read(ctx, stdin)
	}

	f, err := os.Open(name) //nolint:gosec // Input paths come from the command line.
	if err != nil {
		return ingest.Result{}, fmt.Errorf("open input: %w", err)
	}

	defer f.Close()

	return reader.Read(ctx, f)
}

func writeRecords(opts *viewOptions, records []record.Record, stdout io.Writer) error {
	w := stdout

	if opts.output != "" && opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		defer f.Close()

		w = f
	}

	if opts.format == formatTable {
		width, color := outputWidth(w)

		err := lineRenderer{width: width, color: color}.write(w, records)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}

		return nil
	}

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	err = export.Write(w, records, format, export.WithCompression(opts.compress))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}

func outputWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, true
	}

	return width, true
}
