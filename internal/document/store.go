// Package document owns the current generated profile and the edits applied to it.
package document

import (
	"sync"

	"github.com/jonathan/profile-architect/internal/types"
)

// Store holds the single current profile. Every mutation installs a fresh copy, so a
// pointer returned by Current is never modified afterwards.
type Store struct {
	mu      sync.RWMutex
	current *types.GeneratedProfile
	epoch   uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the current profile, or nil before the first successful generation.
// Callers must treat the result as read-only.
func (s *Store) Current() *types.GeneratedProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Epoch identifies the current document lineage. It changes on Reset only.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Snapshot returns the current profile together with its epoch, read atomically.
func (s *Store) Snapshot() (*types.GeneratedProfile, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.epoch
}

// Replace swaps in a new profile wholesale. The store keeps its own copy.
func (s *Store) Replace(doc *types.GeneratedProfile) {
	next := doc.Clone()
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// ReplaceIf swaps in doc only when the store is still on the given epoch.
// It reports whether the swap happened.
func (s *Store) ReplaceIf(epoch uint64, doc *types.GeneratedProfile) bool {
	next := doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.current = next
	return true
}

// ReplaceIfKeepingLetter is ReplaceIf for rewrites that carry no cover letter: when doc has
// none, the letter attached to the document being replaced is kept.
func (s *Store) ReplaceIfKeepingLetter(epoch uint64, doc *types.GeneratedProfile) bool {
	next := doc.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	if next.CoverLetter == "" && s.current != nil {
		next.CoverLetter = s.current.CoverLetter
	}
	s.current = next
	return true
}

// PatchSection replaces the content of the section at index. Titles and order are untouched.
// An index outside the current sections is a no-op and returns false.
func (s *Store) PatchSection(index int, content string) bool {
	return s.update(func(doc *types.GeneratedProfile) bool {
		if index < 0 || index >= len(doc.Sections) {
			return false
		}
		doc.Sections[index].Content = content
		return true
	})
}

// PatchSummary replaces the executive summary.
func (s *Store) PatchSummary(content string) bool {
	return s.update(func(doc *types.GeneratedProfile) bool {
		doc.ExecutiveSummary = content
		return true
	})
}

// PatchPositioning replaces the one-line positioning statement.
func (s *Store) PatchPositioning(content string) bool {
	return s.update(func(doc *types.GeneratedProfile) bool {
		doc.OneLinePositioning = content
		return true
	})
}

// SetCoverLetter attaches or replaces the cover letter.
func (s *Store) SetCoverLetter(text string) bool {
	return s.update(func(doc *types.GeneratedProfile) bool {
		doc.CoverLetter = text
		return true
	})
}

// SetCoverLetterIf is SetCoverLetter guarded by the epoch the request was dispatched under.
func (s *Store) SetCoverLetterIf(epoch uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.current == nil {
		return false
	}
	next := s.current.Clone()
	next.CoverLetter = text
	s.current = next
	return true
}

// Reset discards the document and starts a new epoch.
func (s *Store) Reset() {
	s.mu.Lock()
	s.current = nil
	s.epoch++
	s.mu.Unlock()
}

// update applies fn to a copy of the current document and installs it when fn reports a change.
// It returns false when there is no document.
func (s *Store) update(fn func(doc *types.GeneratedProfile) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	next := s.current.Clone()
	if !fn(next) {
		return false
	}
	s.current = next
	return true
}
