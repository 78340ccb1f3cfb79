package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/loghound/export"
	"go.jacobcolvin.com/loghound/store"
	"go.jacobcolvin.com/loghound/version"
)

const sampleInput = `INFO server started
{"level":"warn","msg":"slow request","tags":["net"]}
{"level":"error","msg":"request failed","tags":["net","ui"],"error":"timeout"}
debug cache warmed
`

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()

	var out bytes.Buffer

	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestViewCommand(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check   func(*testing.T, string)
		args    []string
		wantErr error
	}{
		"table": {
			args: []string{"view", "--log-level=error"},
			check: func(t *testing.T, out string) {
				t.Helper()

				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 4)
				assert.Contains(t, lines[0], "Info  server started")
				assert.Contains(t, lines[2], "[net,ui] request failed (timeout)")
			},
		},
		"filtered ndjson": {
			args: []string{"view", "--log-level=error", "--format=ndjson", "--tags=net", "--tag-mode=only"},
			check: func(t *testing.T, out string) {
				t.Helper()

				var e export.Entry
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &e))
				assert.Equal(t, "slow request", e.Text)
				assert.Equal(t, "warn", e.Level)
			},
		},
		"all records with hidden level": {
			args: []string{"view", "--log-level=error", "--format=json", "--hide-level=info", "--all"},
			check: func(t *testing.T, out string) {
				t.Helper()

				var entries []export.Entry
				require.NoError(t, json.Unmarshal([]byte(out), &entries))
				require.Len(t, entries, 4)
				assert.False(t, entries[0].Visible)
				assert.True(t, entries[1].Visible)
			},
		},
		"min level and search": {
			args: []string{"view", "--log-level=error", "--min-level=warn", "--search=REQUEST"},
			check: func(t *testing.T, out string) {
				t.Helper()

				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 2)
				assert.Contains(t, lines[0], "slow request")
			},
		},
		"unknown format": {
			args:    []string{"view", "--format=csv"},
			wantErr: export.ErrUnknownFormat,
		},
		"invalid capacity": {
			args:    []string{"view", "--log-level=error", "--capacity=1"},
			wantErr: store.ErrInvalidCapacity,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := runRoot(t, sampleInput, tc.args...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			tc.check(t, out)
		})
	}
}

func TestViewFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "app.log")
	out := filepath.Join(dir, "out.ndjson.zst")

	require.NoError(t, os.WriteFile(in, []byte(sampleInput), 0o600))

	_, err := runRoot(t, "", "view", "--log-level=error", "--format=ndjson", "--compress", "-o", out, in)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)

	defer f.Close()

	rc, err := export.Decompress(f)
	require.NoError(t, err)

	defer rc.Close()

	var buf bytes.Buffer

	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestStoreLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	for _, tui := range []bool{true, false} {
		s, err := store.New(store.WithLogger(storeLogger(logger, tui)))
		require.NoError(t, err)

		assert.False(t, s.Log("no level"))

		if tui {
			assert.Empty(t, buf.String())
		} else {
			assert.Contains(t, buf.String(), "log call rejected")
		}

		require.NoError(t, s.Close())
	}
}

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	out, err := runRoot(t, "", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "loghound entry", schema["title"])
	assert.Contains(t, schema["properties"], "text")
}

func TestWriteVersion(t *testing.T) {
	t.Parallel()

	info := version.Info{Version: "v1.2.3", Revision: "abc", GoVersion: "go1.25.0", Platform: "linux/amd64"}

	tcs := map[string]struct {
		format  string
		want    string
		wantErr bool
	}{
		"text":    {format: "text", want: "loghound v1.2.3 (revision abc) go1.25.0 linux/amd64\n"},
		"json":    {format: "json", want: `"version": "v1.2.3"`},
		"yaml":    {format: "yaml", want: "version: v1.2.3"},
		"unknown": {format: "xml", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			err := writeVersion(&buf, info, tc.format)
			if tc.wantErr {
				require.ErrorIs(t, err, export.ErrUnknownFormat)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "loghound.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("min-level: warn\ntags:\n  - ui\n  - net\ncapacity: 300\n"), 0o600))

	t.Setenv("LOGHOUND_SEARCH", "timeout")
	t.Setenv("LOGHOUND_HIDE_LEVEL", "debug, trace")
	t.Setenv("LOGHOUND_CAPACITY", "400")

	opts := newViewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.registerFlags(fs)
	fs.String("config", "", "")

	require.NoError(t, fs.Parse([]string{"--capacity=500"}))
	require.NoError(t, loadConfig(fs, cfgFile))

	assert.Equal(t, "warn", opts.store.MinLevel)
	assert.Equal(t, []string{"ui", "net"}, opts.store.Tags)
	assert.Equal(t, "timeout", opts.store.Search)
	assert.Equal(t, []string{"debug", "trace"}, opts.store.HideLevels)
	assert.Equal(t, 500, opts.store.Capacity, "command line wins")

	err := loadConfig(fs, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
