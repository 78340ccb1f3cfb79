package store

import (
	"fmt"
	"log/slog"
	"strings"

	"go.jacobcolvin.com/loghound/filter"
	"go.jacobcolvin.com/loghound/level"
	"go.jacobcolvin.com/loghound/tag"
)

// SetMinimumLevel sets the level below which records are not stored. Records
// already stored are kept.
func (s *Store) SetMinimumLevel(ref any) error {
	return s.registry.SetMinimum(ref)
}

// MinimumLevel returns the minimum level ID.
func (s *Store) MinimumLevel() level.ID {
	return s.registry.Minimum()
}

// SetLevelEnabled shows or hides the records of a level.
func (s *Store) SetLevelEnabled(ref any, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setLevelEnabled(ref, enabled)
}

// ToggleLevel flips the enabled state of a level and returns the new state.
func (s *Store) ToggleLevel(ref any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.registry.MustResolve(ref)
	if err != nil {
		return false, err
	}

	enabled := !l.Enabled()

	return enabled, s.setLevelEnabled(l, enabled)
}

func (s *Store) setLevelEnabled(ref any, enabled bool) error {
	l, err := s.registry.SetEnabled(ref, enabled)
	if err != nil {
		return err
	}

	s.logger.Debug("level toggled", slog.String("level", l.Name()), slog.Bool("enabled", enabled))
	s.reapply()

	return nil
}

// SetTagMode sets how active tags are compared against record tags.
func (s *Store) SetTagMode(mode tag.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrValidation, tag.ErrUnknownMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tagMode = mode
	s.refreshTagFilter()

	return nil
}

// TagMode returns the current tag mode.
func (s *Store) TagMode() tag.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tagMode
}

// SetActiveTags replaces the viewing partition of the tag catalog with tags.
// Tags not yet in the catalog are added. Every tag must be valid.
func (s *Store) SetActiveTags(tags []string) error {
	err := tag.Validate(tags)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.SetViewing(tags)
	s.refreshTagFilter()

	return nil
}

// ActivateTags moves tags to the viewing partition.
func (s *Store) ActivateTags(tags ...string) error {
	err := tag.Validate(tags)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Activate(tags...)
	s.refreshTagFilter()

	return nil
}

// DeactivateTags moves tags back to the available partition.
func (s *Store) DeactivateTags(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Deactivate(tags...)
	s.refreshTagFilter()
}

// ActivateAllTags moves every known tag to the viewing partition.
func (s *Store) ActivateAllTags() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.ActivateAll()
	s.refreshTagFilter()
}

// DeactivateAllTags moves every known tag to the available partition.
func (s *Store) DeactivateAllTags() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.DeactivateAll()
	s.refreshTagFilter()
}

// AvailableTags returns the tags not selected for viewing, sorted.
func (s *Store) AvailableTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Available()
}

// ActiveTags returns the tags selected for viewing, sorted.
func (s *Store) ActiveTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Viewing()
}

func (s *Store) refreshTagFilter() {
	// A Tag filter always has a valid ID, so Add cannot fail.
	_ = s.chain.Add(filter.NewTag(s.catalog.Viewing(), s.tagMode))
	s.reapply()
}

// SetSearchText filters records by a literal, case-insensitive substring of
// their text. Blank text removes the restriction.
func (s *Store) SetSearchText(text string) {
	if strings.TrimSpace(text) == "" {
		text = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.search = text
	_ = s.chain.Add(filter.NewText(text))
	s.reapply()
}

// SearchText returns the current search text.
func (s *Store) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.search
}

// AddFilter adds f to the filter chain, replacing any filter with the same
// ID, and recomputes visibility.
func (s *Store) AddFilter(f filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.chain.Add(f)
	if err != nil {
		return err
	}

	s.reapply()

	return nil
}

// FilterIDs returns the IDs of the filters in the chain.
func (s *Store) FilterIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.IDs()
}

func (s *Store) reapply() {
	s.chain.Apply(s.records)
	s.events.Publish(Event{Kind: EventRefiltered})
}
