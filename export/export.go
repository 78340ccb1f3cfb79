// Package export serializes store records as NDJSON, JSON or YAML,
// optionally zstd-compressed, and describes the entry shape as a JSON
// Schema.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/klauspost/compress/zstd"

	"go.jacobcolvin.com/loghound/record"
)

// Format is an export encoding.
type Format string

const (
	// FormatNDJSON writes one JSON object per line.
	FormatNDJSON Format = "ndjson"
	// FormatJSON writes a single JSON array.
	FormatJSON Format = "json"
	// FormatYAML writes a YAML sequence.
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat indicates an unrecognized export format string.
var ErrUnknownFormat = errors.New("unknown export format")

var allFormats = []Format{FormatNDJSON, FormatJSON, FormatYAML}

// ParseFormat parses an export format string.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(allFormats, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// GetAllFormatStrings returns every format name.
func GetAllFormatStrings() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = string(f)
	}

	return out
}

// Entry is the exported form of a [record.Record].
type Entry struct {
	Error    *record.ErrorDetail `json:"error,omitempty" jsonschema:"error attached to the record" yaml:"error,omitempty"`
	Time     string              `json:"time"            jsonschema:"RFC 3339 timestamp"           yaml:"time"`
	Clock    string              `json:"clock"           jsonschema:"time of day as HH:MM:SS.mmm"  yaml:"clock"`
	Level    string              `json:"level"           jsonschema:"level name"                   yaml:"level"`
	Text     string              `json:"text"            jsonschema:"message text"                 yaml:"text"`
	Tags     []string            `json:"tags,omitempty"  jsonschema:"record tags"                  yaml:"tags,omitempty"`
	Sequence uint64              `json:"seq"             jsonschema:"insertion sequence number"    yaml:"seq"`
	LevelID  int                 `json:"level_id"        jsonschema:"numeric level ID"             yaml:"level_id"`
	Visible  bool                `json:"visible"         jsonschema:"whether the record passed the active filters" yaml:"visible"`
}

// NewEntry converts r to an [Entry].
func NewEntry(r record.Record) Entry {
	e := Entry{
		Sequence: r.Sequence,
		Time:     r.Timestamp.Format(time.RFC3339Nano),
		Clock:    r.TimestampText(),
		Text:     r.Text,
		Tags:     r.Tags,
		Error:    r.Error,
		Visible:  r.Visible,
	}

	if r.Level != nil {
		e.Level = r.Level.Name()
		e.LevelID = int(r.Level.ID())
	}

	return e
}

// Option configures [Write].
type Option func(*options)

type options struct {
	compress bool
}

// WithCompression wraps the output in a zstd stream.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.compress = enabled
	}
}

// Write encodes records to w in the given format.
func Write(w io.Writer, records []record.Record, format Format, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if !slices.Contains(allFormats, format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	entries := make([]Entry, len(records))
	for i, r := range records {
		entries[i] = NewEntry(r)
	}

	if !o.compress {
		return encode(w, entries, format)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	err = encode(enc, entries, format)
	if err != nil {
		_ = enc.Close()
		return err
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close zstd encoder: %w", err)
	}

	return nil
}

func encode(w io.Writer, entries []Entry, format Format) error {
	switch format {
	case FormatNDJSON:
		enc := json.NewEncoder(w)
		for _, e := range entries {
			err := enc.Encode(e)
			if err != nil {
				return fmt.Errorf("encode entry %d: %w", e.Sequence, err)
			}
		}

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(entries)
		if err != nil {
			return fmt.Errorf("encode entries: %w", err)
		}

	case FormatYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode entries: %w", err)
		}

		_, err = w.Write(data)
		if err != nil {
			return fmt.Errorf("write entries: %w", err)
		}
	}

	return nil
}

// Decompress returns a reader that decodes a zstd stream written by [Write]
// with [WithCompression]. Close releases the decoder.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return dec.IOReadCloser(), nil
}

// Schema returns the JSON Schema of [Entry].
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Entry](nil)
	if err != nil {
		return nil, fmt.Errorf("infer entry schema: %w", err)
	}

	s.Title = "loghound entry"

	return s, nil
}
