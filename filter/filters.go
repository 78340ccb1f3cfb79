package filter

import (
	"regexp"
	"strings"

	"go.jacobcolvin.com/loghound/record"
	"go.jacobcolvin.com/loghound/tag"
)

// Level matches records whose level is enabled.
type Level struct{}

// ID implements [Filter].
func (Level) ID() string { return LevelID }

// Match implements [Filter].
func (Level) Match(r *record.Record) bool {
	return r.Level != nil && r.Level.Enabled()
}

// Text matches records whose message contains a search string, ignoring
// case. Every character of the search string is taken literally.
//
// Create instances with [NewText].
type Text struct {
	re     *regexp.Regexp
	search string
}

// NewText creates a [Text] filter for search. An empty search matches every
// record.
func NewText(search string) *Text {
	t := &Text{search: search}
	if search != "" {
		t.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(search))
	}

	return t
}

// ID implements [Filter].
func (*Text) ID() string { return TextID }

// Search returns the search string.
func (t *Text) Search() string {
	if t == nil {
		return ""
	}

	return t.search
}

// Match implements [Filter].
func (t *Text) Match(r *record.Record) bool {
	if t == nil || t.re == nil {
		return true
	}

	return t.re.MatchString(r.Text)
}

// Tag compares record tags against a target set using a [tag.Mode]. Tags are
// compared case-insensitively.
//
// Create instances with [NewTag].
type Tag struct {
	targets map[string]struct{}
	mode    tag.Mode
}

// NewTag creates a [Tag] filter. An empty targets set matches every record
// regardless of mode. Unknown modes behave like [tag.ModeAny].
func NewTag(targets []string, mode tag.Mode) *Tag {
	if !mode.Valid() {
		mode = tag.ModeAny
	}

	return &Tag{targets: lowerSet(targets), mode: mode}
}

// ID implements [Filter].
func (*Tag) ID() string { return TagID }

// Mode returns the matching mode.
func (t *Tag) Mode() tag.Mode {
	if t == nil {
		return tag.ModeAny
	}

	return t.mode
}

// Match implements [Filter].
func (t *Tag) Match(r *record.Record) bool {
	if t == nil || len(t.targets) == 0 {
		return true
	}

	tags := lowerSet(r.Tags)

	switch t.mode {
	case tag.ModeIntersection:
		return len(tags) >= len(t.targets) && t.allPresent(tags)
	case tag.ModeOnly:
		return len(tags) == len(t.targets) && t.allPresent(tags)
	case tag.ModeExclusion:
		return !t.anyPresent(tags)
	default:
		return t.anyPresent(tags)
	}
}

func (t *Tag) allPresent(tags map[string]struct{}) bool {
	for k := range t.targets {
		if _, ok := tags[k]; !ok {
			return false
		}
	}

	return true
}

func (t *Tag) anyPresent(tags map[string]struct{}) bool {
	for k := range t.targets {
		if _, ok := tags[k]; ok {
			return true
		}
	}

	return false
}

func lowerSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}

		set[strings.ToLower(s)] = struct{}{}
	}

	return set
}
