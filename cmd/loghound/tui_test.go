package main

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/loghound/store"
	"go.jacobcolvin.com/loghound/tag"
)

func newTestModel(t *testing.T) (*model, *store.Store) {
	t.Helper()

	s, err := store.New()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	require.True(t, s.Info("user clicked save", []string{"ui"}))
	require.True(t, s.Error("save failed", []string{"ui", "net"}))

	m := newModel(s)
	m.width = 120
	m.height = 20

	return m, s
}

func press(m *model, keys ...string) {
	for _, k := range keys {
		m.handleKey(k)
	}
}

func TestModelKeys(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		check func(*testing.T, *model, *store.Store)
		keys  []string
	}{
		"toggle error level": {
			keys: []string{"2"},
			check: func(t *testing.T, m *model, s *store.Store) {
				t.Helper()

				assert.Len(t, s.VisibleRecords(), 1)
				assert.Equal(t, "error hidden", m.status)
			},
		},
		"toggle twice": {
			keys: []string{"2", "2"},
			check: func(t *testing.T, _ *model, s *store.Store) {
				t.Helper()

				assert.Len(t, s.VisibleRecords(), 2)
			},
		},
		"out of range level key": {
			keys: []string{"9", "0", "x"},
			check: func(t *testing.T, m *model, s *store.Store) {
				t.Helper()

				assert.Len(t, s.VisibleRecords(), 2)
				assert.Empty(t, m.status)
			},
		},
		"cycle mode": {
			keys: []string{"m", "m"},
			check: func(t *testing.T, m *model, s *store.Store) {
				t.Helper()

				assert.Equal(t, tag.ModeOnly, s.TagMode())
				assert.Equal(t, "tag mode only", m.status)
			},
		},
		"cycle mode wraps": {
			keys: []string{"m", "m", "m", "m"},
			check: func(t *testing.T, _ *model, s *store.Store) {
				t.Helper()

				assert.Equal(t, tag.ModeAny, s.TagMode())
			},
		},
		"activate all then only": {
			keys: []string{"a", "m", "m"},
			check: func(t *testing.T, _ *model, s *store.Store) {
				t.Helper()

				visible := s.VisibleRecords()
				require.Len(t, visible, 1)
				assert.Equal(t, "save failed", visible[0].Text)
			},
		},
		"deactivate all": {
			keys: []string{"a", "n"},
			check: func(t *testing.T, _ *model, s *store.Store) {
				t.Helper()

				assert.Empty(t, s.ActiveTags())
				assert.Len(t, s.VisibleRecords(), 2)
			},
		},
		"pause and resume": {
			keys: []string{"p"},
			check: func(t *testing.T, m *model, s *store.Store) {
				t.Helper()

				assert.False(t, s.Enabled())
				assert.Equal(t, "logging paused", m.status)
				assert.Contains(t, m.header(), "(paused)")

				m.handleKey("p")
				assert.True(t, s.Enabled())
			},
		},
		"clear": {
			keys: []string{"c"},
			check: func(t *testing.T, _ *model, s *store.Store) {
				t.Helper()

				assert.Zero(t, s.Len())
			},
		},
		"follow toggle": {
			keys: []string{"f"},
			check: func(t *testing.T, m *model, _ *store.Store) {
				t.Helper()

				assert.False(t, m.following)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, s := newTestModel(t)
			press(m, tc.keys...)
			tc.check(t, m, s)
		})
	}
}

func TestModelSearch(t *testing.T) {
	t.Parallel()

	m, s := newTestModel(t)

	m.handleKey("/")
	assert.True(t, m.editing)

	for _, r := range "failx" {
		m.editSearch(tea.KeyPressMsg{Code: r, Text: string(r)})
	}

	m.editSearch(tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.Equal(t, "fail", m.search)
	assert.Empty(t, s.SearchText(), "not applied before enter")

	m.editSearch(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.Equal(t, "fail", s.SearchText())
	assert.Len(t, s.VisibleRecords(), 1)

	m.handleKey("/")
	m.editSearch(tea.KeyPressMsg{Code: 'z', Text: "z"})
	m.editSearch(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, "fail", m.search)
}

func TestModelUpdate(t *testing.T) {
	t.Parallel()

	m, s := newTestModel(t)

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	assert.Nil(t, cmd)
	assert.Equal(t, 80, m.width)

	_, cmd = m.Update(storeEventMsg{ev: store.Event{Kind: store.EventCleared, Removed: 2}})
	assert.NotNil(t, cmd)
	assert.Equal(t, "cleared 2 records", m.status)

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view := m.View()
	assert.True(t, view.AltScreen)
	assert.Equal(t, 2, s.Len())
}

func TestModelWaitForEvent(t *testing.T) {
	t.Parallel()

	m, s := newTestModel(t)

	require.True(t, s.Warn("new record"))

	msg := m.Init()()
	ev, ok := msg.(storeEventMsg)
	require.True(t, ok)
	assert.Equal(t, store.EventLogged, ev.ev.Kind)
	assert.Equal(t, "new record", ev.ev.Record.Text)

	require.NoError(t, s.Close())
	assert.IsType(t, subscriptionClosedMsg{}, m.waitForEvent()())
}
