// Package ingest reads log lines from a stream into a [store.Store].
//
// Each line is either a JSON object (or array of objects), as produced by
// structured loggers and by the ndjson export format, or plain text. Plain
// lines may start with a level name such as "WARN", "[error]" or "info:".
// Lines without a recognizable level are stored at the default level.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/valyala/fastjson"

	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/store"
)

// MaxLineSize is the longest line accepted by [Reader.Read]. Longer lines
// are skipped and counted as rejected.
const MaxLineSize = 1 << 20

var (
	textKeys  = []string{"msg", "message", "text"}
	levelKeys = []string{"level", "severity", "lvl"}
)

// Result summarizes a [Reader.Read] call.
type Result struct {
	// Lines is the number of non-blank lines read.
	Lines int
	// Accepted is the number of records stored.
	Accepted int
	// Rejected is the number of records the store refused.
	Rejected int
}

// Reader parses lines and logs them into a store. Safe for concurrent use.
//
// Create instances with [NewReader].
type Reader struct {
	store        *store.Store
	logger       *slog.Logger
	parser       fastjson.ParserPool
	tags         []string
	defaultLevel level.ID
}

// Option configures a [Reader].
type Option func(*Reader)

// WithLogger sets the logger used to report unparsable lines.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDefaultLevel sets the level used for lines that name none. The default
// is [level.IDInfo].
func WithDefaultLevel(id level.ID) Option {
	return func(r *Reader) {
		r.defaultLevel = id
	}
}

// WithTags adds tags to every record read.
func WithTags(tags ...string) Option {
	return func(r *Reader) {
		r.tags = append(r.tags, tags...)
	}
}

// NewReader creates a [Reader] that logs into s.
func NewReader(s *store.Store, opts ...Option) *Reader {
	r := &Reader{
		store:        s,
		logger:       slog.New(slog.DiscardHandler),
		defaultLevel: level.IDInfo,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Read consumes src line by line until EOF or until ctx is done.
func (r *Reader) Read(ctx context.Context, src io.Reader) (Result, error) {
	var (
		res     Result
		buf     []byte
		tooLong bool
	)

	br := bufio.NewReaderSize(src, 64*1024)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if errors.Is(err, io.EOF) {
			return res, nil
		}

		if err != nil {
			return res, fmt.Errorf("read lines: %w", err)
		}

		err = ctx.Err()
		if err != nil {
			return res, fmt.Errorf("read lines: %w", err)
		}

		if !tooLong {
			if len(buf)+len(chunk) > MaxLineSize {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}

		if isPrefix {
			continue
		}

		if tooLong {
			tooLong = false
			res.Lines++
			res.Rejected++

			r.logger.Warn("line too long", slog.Int("line", res.Lines), slog.Int("max", MaxLineSize))

			continue
		}

		line := bytes.TrimSpace(buf)
		buf = buf[:0]

		if len(line) == 0 {
			continue
		}

		res.Lines++

		accepted, rejected := r.Line(line)
		res.Accepted += accepted
		res.Rejected += rejected
	}
}

// Line logs a single line and returns how many records were accepted and
// rejected. A JSON array line yields one record per element.
func (r *Reader) Line(line []byte) (int, int) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, 0
	}

	if line[0] == '{' || line[0] == '[' {
		p := r.parser.Get()
		defer r.parser.Put(p)

		v, err := p.ParseBytes(line)
		if err == nil {
			return r.logValue(v)
		}

		r.logger.Debug("line is not JSON, storing as text", slog.Any("error", err))
	}

	if r.store.Log(r.plainArgs(string(line))...) {
		return 1, 0
	}

	return 0, 1
}

func (r *Reader) logValue(v *fastjson.Value) (int, int) {
	var accepted, rejected int

	values := []*fastjson.Value{v}
	if v.Type() == fastjson.TypeArray {
		values = v.GetArray()
	}

	for _, val := range values {
		if val.Type() != fastjson.TypeObject {
			rejected++
			continue
		}

		if r.store.Log(r.objectArgs(val)...) {
			accepted++
		} else {
			rejected++
		}
	}

	return accepted, rejected
}

func (r *Reader) objectArgs(v *fastjson.Value) []any {
	args := []any{r.defaultLevel, record.Tags(r.tags)}

	for _, key := range levelKeys {
		lv := v.Get(key)
		if lv == nil {
			continue
		}

		switch lv.Type() {
		case fastjson.TypeNumber:
			args = append(args, level.ID(lv.GetInt()))
		case fastjson.TypeString:
			args = append(args, level.Name(lv.GetStringBytes()))
		}

		break
	}

	for _, key := range textKeys {
		if tv := v.Get(key); tv != nil && tv.Type() == fastjson.TypeString {
			args = append(args, record.Text(tv.GetStringBytes()))
			break
		}
	}

	switch tv := v.Get("tags"); {
	case tv == nil:
	case tv.Type() == fastjson.TypeArray:
		var tags record.Tags
		for _, t := range tv.GetArray() {
			tags = append(tags, string(t.GetStringBytes()))
		}

		args = append(args, tags)
	case tv.Type() == fastjson.TypeString:
		args = append(args, splitTags(string(tv.GetStringBytes())))
	}

	if ev := v.Get("error"); ev != nil {
		switch ev.Type() {
		case fastjson.TypeString:
			args = append(args, &record.ErrorDetail{Message: string(ev.GetStringBytes())})
		case fastjson.TypeObject:
			args = append(args, &record.ErrorDetail{
				Name:    string(ev.GetStringBytes("name")),
				Message: string(ev.GetStringBytes("message")),
				Stack:   string(ev.GetStringBytes("stack")),
			})
		}
	}

	return args
}

// plainArgs treats a leading word naming a registered level as the level.
func (r *Reader) plainArgs(line string) []any {
	args := []any{r.defaultLevel, record.Tags(r.tags), record.Text(line)}

	word, rest, found := strings.Cut(line, " ")
	if !found {
		return args
	}

	name := strings.Trim(word, "[]:")

	l, ok := r.store.Registry().Resolve(name)
	if !ok {
		return args
	}

	return append(args, l, record.Text(strings.TrimSpace(rest)))
}

func splitTags(s string) record.Tags {
	var tags record.Tags
	for t := range strings.SplitSeq(s, ",") {
		tags = append(tags, strings.TrimSpace(t))
	}

	return tags
}
