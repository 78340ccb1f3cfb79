package record

import (
	"fmt"
	"strings"

	"go.jacobcolvin.com/loghound/level"
)

// maxGroupDepth bounds flattening of nested groups, so a group that contains
// itself cannot recurse forever.
const maxGroupDepth = 16

// Text marks a value as the message text.
type Text string

// Tags is a list of tag names.
type Tags []string

// Group is a nested list of logging arguments. Its elements are classified as
// if they had been passed directly.
type Group []any

// Draft is the result of [Classify]. It is not validated; any field may be
// missing.
type Draft struct {
	// Level is the level reference as passed: a [*level.Level], [level.ID]
	// or [level.Name]. Nil when no level was given.
	Level any
	Error *ErrorDetail
	Text  string
	Tags  []string
	// HasText is true when a text argument was present, even if blank.
	HasText bool
}

// Classify sorts args into a [Draft]. Argument order is not significant:
//
//   - [*level.Level], [level.ID], [level.Name]: the level (last one wins).
//   - string, [Text]: the message text (last one wins).
//   - []string, [Tags]: tags, merged across arguments with blank entries
//     dropped and case-insensitive duplicates removed.
//   - error, [ErrorDetail], [*ErrorDetail]: the error detail (last one wins).
//   - []any, [Group]: flattened, each element classified in turn.
//
// Nil values and any other types are ignored.
func Classify(args ...any) Draft {
	var d Draft

	d.classify(args, 0)

	return d
}

func (d *Draft) classify(args []any, depth int) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case *level.Level:
			if v != nil {
				d.Level = v
			}
		case level.ID, level.Name:
			d.Level = v
		case string:
			d.setText(v)
		case Text:
			d.setText(string(v))
		case []string:
			d.addTags(v)
		case Tags:
			d.addTags(v)
		case ErrorDetail:
			d.Error = &v
		case *ErrorDetail:
			if v != nil {
				d.Error = v
			}
		case error:
			d.Error = NewErrorDetail(v)
		case []any:
			if depth < maxGroupDepth {
				d.classify(v, depth+1)
			}
		case Group:
			if depth < maxGroupDepth {
				d.classify(v, depth+1)
			}
		}
	}
}

func (d *Draft) setText(s string) {
	d.Text = s
	d.HasText = true
}

func (d *Draft) addTags(tags []string) {
	for _, t := range tags {
		if strings.TrimSpace(t) == "" || containsFold(d.Tags, t) {
			continue
		}

		d.Tags = append(d.Tags, t)
	}
}

func containsFold(ss []string, s string) bool {
	for _, v := range ss {
		if strings.EqualFold(v, s) {
			return true
		}
	}

	return false
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
