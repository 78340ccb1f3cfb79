package main

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/loghound/event"
	"go.jacobcolvin.com/loghound/store"
	"go.jacobcolvin.com/loghound/tag"
)

// headerLines is the number of lines above the record list.
const headerLines = 3

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	disabledStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	modeCycle = []tag.Mode{tag.ModeAny, tag.ModeIntersection, tag.ModeOnly, tag.ModeExclusion}
)

type storeEventMsg struct {
	ev store.Event
}

type subscriptionClosedMsg struct{}

type model struct {
	store     *store.Store
	sub       *event.Subscription[store.Event]
	status    string
	search    string
	width     int
	height    int
	editing   bool
	following bool
}

func newModel(s *store.Store) *model {
	return &model{
		store:     s,
		sub:       s.Subscribe(),
		search:    s.SearchText(),
		following: true,
	}
}

// Init starts listening for store events.
func (m *model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m *model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sub.C()
		if !ok {
			return subscriptionClosedMsg{}
		}

		return storeEventMsg{ev: ev}
	}
}

// Update handles store events, resizes and key presses.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case storeEventMsg:
		if msg.ev.Kind == store.EventCleared {
			m.status = fmt.Sprintf("cleared %d records", msg.ev.Removed)
		}

		return m, m.waitForEvent()

	case subscriptionClosedMsg:
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyPressMsg:
		if m.editing {
			return m, m.editSearch(msg)
		}

		return m, m.handleKey(msg.String())
	}

	return m, nil
}

func (m *model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		m.sub.Close()
		return tea.Quit

	case "/":
		m.editing = true
		m.status = ""

	case "c":
		m.store.Clear()

	case "m":
		m.cycleMode()

	case "a":
		m.store.ActivateAllTags()
		m.status = "all tags active"

	case "n":
		m.store.DeactivateAllTags()
		m.status = "no tags active"

	case "p":
		enabled := !m.store.Enabled()
		m.store.SetEnabled(enabled)

		m.status = "logging resumed"
		if !enabled {
			m.status = "logging paused"
		}

	case "f":
		m.following = !m.following

	default:
		m.toggleLevel(key)
	}

	return nil
}

// toggleLevel maps the keys 1-9 onto levels, most severe first.
func (m *model) toggleLevel(key string) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return
	}

	levels := m.store.Registry().Ordered()
	if n > len(levels) {
		return
	}

	l := levels[n-1]

	enabled, err := m.store.ToggleLevel(l)
	if err != nil {
		m.status = err.Error()
		return
	}

	state := "hidden"
	if enabled {
		state = "shown"
	}

	m.status = fmt.Sprintf("%s %s", l.Name(), state)
}

func (m *model) cycleMode() {
	current := m.store.TagMode()

	next := modeCycle[0]
	for i, mode := range modeCycle {
		if mode == current {
			next = modeCycle[(i+1)%len(modeCycle)]
			break
		}
	}

	err := m.store.SetTagMode(next)
	if err != nil {
		m.status = err.Error()
		return
	}

	m.status = "tag mode " + string(next)
}

func (m *model) editSearch(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.sub.Close()
		return tea.Quit

	case "enter":
		m.editing = false
		m.store.SetSearchText(m.search)

	case "esc":
		m.editing = false
		m.search = m.store.SearchText()

	case "backspace":
		if r := []rune(m.search); len(r) > 0 {
			m.search = string(r[:len(r)-1])
		}

	default:
		m.search += msg.Text
	}

	return nil
}

// View renders the header, the visible records and the key help.
func (m *model) View() tea.View {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")

	lr := lineRenderer{width: m.width, color: true}
	records := m.store.VisibleRecords()

	rows := max(m.height-headerLines-1, 1)
	if m.following && len(records) > rows {
		records = records[len(records)-rows:]
	} else if len(records) > rows {
		records = records[:rows]
	}

	for i := range records {
		b.WriteString(lr.render(&records[i]))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("1-9 toggle level  m mode  a/n all/no tags  / search  c clear  p pause  f follow  q quit"))

	v := tea.NewView(b.String())
	v.AltScreen = true

	return v
}

func (m *model) header() string {
	counts := m.store.Counts()

	var levels []string

	for i, l := range m.store.Registry().Ordered() {
		text := fmt.Sprintf("%d:%s %d", i+1, l.Label(), counts[l.Name()])
		if l.Enabled() {
			levels = append(levels, levelStyle(l).Render(text))
		} else {
			levels = append(levels, disabledStyle.Render(text))
		}
	}

	title := titleStyle.Render("loghound")
	if !m.store.Enabled() {
		title += " (paused)"
	}

	search := m.search
	if m.editing {
		search += "█"
	}

	tags := strings.Join(m.store.ActiveTags(), ",")
	if tags == "" {
		tags = "-"
	}

	return strings.Join([]string{
		title + "  " + strings.Join(levels, "  "),
		fmt.Sprintf("mode %s  tags %s  available %s  search %q",
			m.store.TagMode(), tags, strings.Join(m.store.AvailableTags(), ","), search),
		helpStyle.Render(m.status),
	}, "\n")
}
