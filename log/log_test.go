package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	charmlog "charm.land/log/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/loghound/log"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		"error":              {input: "error", want: log.LevelError},
		"warn":               {input: "warn", want: log.LevelWarn},
		"warning alias":      {input: "warning", want: log.LevelWarn},
		"warning any case":   {input: "WARNING", want: log.LevelWarn},
		"padded":             {input: "  debug\n", want: log.LevelDebug},
		"upper":              {input: "INFO", want: log.LevelInfo},
		"store-only level":   {input: "trace", wantErr: true},
		"store-only fatal":   {input: "fatal", wantErr: true},
		"empty":              {input: "", wantErr: true},
		"warning with space": {input: "warn ing", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lvl, err := log.ParseLevel(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrUnknownLogLevel)
				assert.Contains(t, err.Error(), tc.input)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, lvl)
		})
	}
}

func TestLevelSlogLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   log.Level
		want slog.Level
	}{
		"error":   {in: log.LevelError, want: slog.LevelError},
		"warn":    {in: log.LevelWarn, want: slog.LevelWarn},
		"info":    {in: log.LevelInfo, want: slog.LevelInfo},
		"debug":   {in: log.LevelDebug, want: slog.LevelDebug},
		"unknown": {in: log.Level("loud"), want: slog.LevelInfo},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.in.SlogLevel())
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, s := range log.GetAllFormatStrings() {
		f, err := log.ParseFormat(" " + s + " ")
		require.NoError(t, err)
		assert.Equal(t, log.Format(s), f)
	}

	_, err := log.ParseFormat("yaml")
	require.ErrorIs(t, err, log.ErrUnknownLogFormat)

	assert.Equal(t, []string{"error", "warn", "info", "debug"}, log.GetAllLevelStrings())
	assert.Equal(t, []string{"json", "logfmt", "text"}, log.GetAllFormatStrings())
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check  func(*testing.T, slog.Handler, []byte)
		format log.Format
	}{
		"json carries source": {
			format: log.FormatJSON,
			check: func(t *testing.T, _ slog.Handler, out []byte) {
				t.Helper()

				var entry map[string]any
				require.NoError(t, json.Unmarshal(out, &entry))
				assert.Equal(t, "record stored", entry["msg"])
				assert.Equal(t, "WARN", entry["level"])
				assert.InDelta(t, 7, entry["seq"], 0)
				assert.Contains(t, entry, slog.SourceKey)
			},
		},
		"logfmt carries source": {
			format: log.FormatLogfmt,
			check: func(t *testing.T, _ slog.Handler, out []byte) {
				t.Helper()

				assert.Contains(t, string(out), "level=WARN")
				assert.Contains(t, string(out), `msg="record stored"`)
				assert.Contains(t, string(out), "seq=7")
				assert.Contains(t, string(out), "source=")
			},
		},
		"text uses charm": {
			format: log.FormatText,
			check: func(t *testing.T, h slog.Handler, out []byte) {
				t.Helper()

				assert.IsType(t, &charmlog.Logger{}, h)
				assert.Contains(t, string(out), "WARN")
				assert.Contains(t, string(out), "record stored")
				assert.Contains(t, string(out), "seq=7")
			},
		},
		"unknown format falls back to text": {
			format: log.Format("xml"),
			check: func(t *testing.T, h slog.Handler, out []byte) {
				t.Helper()

				assert.IsType(t, &charmlog.Logger{}, h)
				assert.Contains(t, string(out), "record stored")
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			h := log.NewHandler(&buf, log.LevelWarn, tc.format)
			logger := slog.New(h)

			logger.Info("skipped")
			assert.Empty(t, buf.String())

			logger.Warn("record stored", slog.Int("seq", 7))
			tc.check(t, h, buf.Bytes())
		})
	}
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level   string
		format  string
		wantErr error
	}{
		"warning alias json": {level: "warning", format: "json"},
		"debug logfmt":       {level: "debug", format: "logfmt"},
		"invalid level":      {level: "trace", format: "json", wantErr: log.ErrUnknownLogLevel},
		"invalid format":     {level: "info", format: "yaml", wantErr: log.ErrUnknownLogFormat},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			h, err := log.NewHandlerFromStrings(&buf, tc.level, tc.format)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, log.ErrInvalidArgument)
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, h)

				return
			}

			require.NoError(t, err)
			slog.New(h).Warn("kept")
			assert.Contains(t, buf.String(), "kept")
		})
	}
}

func TestConfigFlags(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args      []string
		wantLevel string
		wantInfo  bool
		wantJSON  bool
	}{
		"defaults": {
			wantLevel: "info",
			wantInfo:  true,
		},
		"warning json": {
			args:      []string{"--log-level=warning", "--log-format=json"},
			wantLevel: "warning",
			wantJSON:  true,
		},
		"debug logfmt": {
			args:      []string{"--log-level", "debug", "--log-format", "logfmt"},
			wantLevel: "debug",
			wantInfo:  true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := log.NewConfig()
			cmd := &cobra.Command{Use: "test"}
			cfg.RegisterFlags(cmd.Flags())
			require.NoError(t, cmd.Flags().Parse(tc.args))
			assert.Equal(t, tc.wantLevel, cfg.Level)

			var buf bytes.Buffer

			logger, err := cfg.NewLogger(&buf)
			require.NoError(t, err)

			logger.Info("opened input")

			if tc.wantInfo {
				assert.Contains(t, buf.String(), "opened input")
			} else {
				assert.Empty(t, buf.String())
			}

			buf.Reset()
			logger.Warn("line too long")

			if tc.wantJSON {
				assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
			}

			assert.Contains(t, buf.String(), "line too long")
		})
	}
}

func TestRegisterCompletions(t *testing.T) {
	t.Parallel()

	cfg := log.Flags{Level: "diag-level", Format: "diag-format"}.NewConfig()

	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	tcs := map[string]struct {
		flag string
		want []string
	}{
		"level":  {flag: "diag-level", want: log.GetAllLevelStrings()},
		"format": {flag: "diag-format", want: log.GetAllFormatStrings()},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fn, ok := cmd.GetFlagCompletionFunc(tc.flag)
			require.True(t, ok)

			values, directive := fn(cmd, nil, "")
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
			assert.Equal(t, tc.want, values)
		})
	}

	unregistered := &cobra.Command{Use: "bare"}
	require.Error(t, cfg.RegisterCompletions(unregistered))
}
