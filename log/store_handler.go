package log

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/store"
)

// TagsKey is the attribute key whose value is used as record tags by
// [StoreHandler]. The value may be a []string or a comma-separated string.
const TagsKey = "tags"

// ErrRecordRejected is returned by [StoreHandler.Handle] when the store
// refuses the record.
var ErrRecordRejected = errors.New("record rejected by store")

// StoreHandler is a [slog.Handler] that writes records into a [store.Store].
//
// The slog level is mapped with [StoreLevel]. Attributes become part of the
// record text as key=value pairs, except for the [TagsKey] attribute, which
// supplies tags, and error values, which supply the error detail.
//
// Create instances with [NewStoreHandler].
type StoreHandler struct {
	store  *store.Store
	level  slog.Leveler
	err    *record.ErrorDetail
	prefix string
	fields []string
	tags   []string
}

// NewStoreHandler creates a [StoreHandler] writing to s. Records below lvl
// are skipped; a nil lvl means [slog.LevelInfo]. Every record carries tags in
// addition to any it is given.
func NewStoreHandler(s *store.Store, lvl slog.Leveler, tags ...string) *StoreHandler {
	if lvl == nil {
		lvl = slog.LevelInfo
	}

	return &StoreHandler{
		store: s,
		level: lvl,
		tags:  slices.Clone(tags),
	}
}

// StoreLevel maps a [slog.Level] onto a built-in store level.
func StoreLevel(l slog.Level) level.ID {
	switch {
	case l <= slog.LevelDebug-4:
		return level.IDTrace
	case l < slog.LevelInfo:
		return level.IDDebug
	case l < slog.LevelWarn:
		return level.IDInfo
	case l < slog.LevelError:
		return level.IDWarn
	case l < slog.LevelError+4:
		return level.IDError
	}

	return level.IDFatal
}

// Enabled implements [slog.Handler].
func (h *StoreHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.store.Enabled()
}

// Handle implements [slog.Handler].
func (h *StoreHandler) Handle(_ context.Context, r slog.Record) error {
	c := h.clone()

	r.Attrs(func(a slog.Attr) bool {
		c.addAttr(c.prefix, a)
		return true
	})

	text := r.Message
	if len(c.fields) > 0 {
		text = strings.TrimSpace(text + " " + strings.Join(c.fields, " "))
	}

	args := []any{StoreLevel(r.Level), record.Text(text), record.Tags(c.tags)}
	if c.err != nil {
		args = append(args, c.err)
	}

	if !h.store.Log(args...) {
		return ErrRecordRejected
	}

	return nil
}

// WithAttrs implements [slog.Handler].
func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.addAttr(c.prefix, a)
	}

	return c
}

// WithGroup implements [slog.Handler].
func (h *StoreHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := h.clone()
	c.prefix += name + "."

	return c
}

func (h *StoreHandler) clone() *StoreHandler {
	c := *h
	c.fields = slices.Clip(h.fields)
	c.tags = slices.Clip(h.tags)

	return &c
}

func (h *StoreHandler) addAttr(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.addAttr(p, ga)
		}

		return
	}

	if prefix == "" && a.Key == TagsKey {
		h.addTags(a.Value)
		return
	}

	if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny {
		h.err = record.NewErrorDetail(err)
		return
	}

	h.fields = append(h.fields, prefix+a.Key+"="+quote(a.Value.String()))
}

func (h *StoreHandler) addTags(v slog.Value) {
	switch tv := v.Any().(type) {
	case []string:
		h.tags = append(h.tags, tv...)
	case string:
		for t := range strings.SplitSeq(tv, ",") {
			h.tags = append(h.tags, strings.TrimSpace(t))
		}
	}
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}

	return s
}
