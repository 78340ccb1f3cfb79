// Package log provides diagnostic [log/slog] handler construction and a
// handler that writes into a [store.Store].
//
// Diagnostic handlers support multiple output formats ([FormatJSON],
// [FormatLogfmt], and [FormatText]) and severity levels ([LevelError],
// [LevelWarn], [LevelInfo], and [LevelDebug]). Use [NewHandler] to create a
// handler directly, or use [Config] with CLI flag integration via
// [github.com/spf13/pflag] and shell completion support via
// [github.com/spf13/cobra]:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	logger, err := cfg.NewLogger(os.Stderr)
//
// A [StoreHandler] routes slog output into a store, which is useful while a
// TUI owns the terminal:
//
//	h := log.NewStoreHandler(s, slog.LevelDebug, "loghound")
//	logger := slog.New(h)
//	logger.Warn("slow read", "tags", []string{"io"}, "took", d)
package log
