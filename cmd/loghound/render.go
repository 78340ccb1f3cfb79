package main

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/record"
)

var (
	levelStyles = map[level.ID]lipgloss.Style{
		level.IDFatal: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
		level.IDError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		level.IDWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		level.IDInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		level.IDDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		level.IDTrace: lipgloss.NewStyle().Faint(true),
	}
	defaultLevelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	timeStyle         = lipgloss.NewStyle().Faint(true)
	tagStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func levelStyle(l *level.Level) lipgloss.Style {
	if l == nil {
		return defaultLevelStyle
	}

	if s, ok := levelStyles[l.ID()]; ok {
		return s
	}

	return defaultLevelStyle
}

// lineRenderer formats records as single lines. Width 0 disables
// truncation.
type lineRenderer struct {
	width int
	color bool
}

func (lr lineRenderer) render(r *record.Record) string {
	label := "?????"
	if r.Level != nil {
		label = fmt.Sprintf("%-5s", r.Level.Label())
	}

	parts := []string{lr.style(timeStyle, r.TimestampText()), lr.style(levelStyle(r.Level), label)}

	if len(r.Tags) > 0 {
		parts = append(parts, lr.style(tagStyle, "["+strings.Join(r.Tags, ",")+"]"))
	}

	text := r.Text
	if r.Error != nil {
		text += " " + lr.style(errorStyle, errorText(r.Error))
	}

	parts = append(parts, text)
	line := strings.Join(parts, " ")

	if lr.width > 0 && lipgloss.Width(line) > lr.width {
		line = truncate(line, lr.width)
	}

	return line
}

func (lr lineRenderer) style(s lipgloss.Style, text string) string {
	if !lr.color {
		return text
	}

	return s.Render(text)
}

func (lr lineRenderer) write(w io.Writer, records []record.Record) error {
	for i := range records {
		_, err := fmt.Fprintln(w, lr.render(&records[i]))
		if err != nil {
			return fmt.Errorf("write record %d: %w", records[i].Sequence, err)
		}
	}

	return nil
}

func errorText(e *record.ErrorDetail) string {
	if e.Name == "" {
		return "(" + e.Message + ")"
	}

	return "(" + e.Name + ": " + e.Message + ")"
}

// truncate cuts s to width cells, ending with an ellipsis.
func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}

	return lipgloss.NewStyle().MaxWidth(width-1).Render(s) + "…"
}
