package session

import (
	"sync"

	"github.com/google/uuid"

	"AXpress/internal/domain"
)

// DownloadEffect asks for a paper's file to be stored server-side.
// Selection returns it; the caller decides where and when it runs.
type DownloadEffect struct {
	Paper domain.Paper
}

// Title is the cache key the effect fills.
func (e DownloadEffect) Title() string {
	return e.Paper.Title
}

// Selection holds zero or one selected paper and owns the reset of Progress.
type Selection struct {
	progress *Progress
	newID    func() string

	mu       sync.RWMutex
	current  domain.Paper
	selected bool
}

// NewSelection couples a selection to progress.
func NewSelection(progress *Progress) *Selection {
	if progress == nil {
		progress = NewProgress()
	}
	return &Selection{progress: progress, newID: uuid.NewString}
}

// Progress returns the coupled progress set.
func (s *Selection) Progress() *Progress {
	return s.progress
}

// Select replaces the current paper and resets progress. A paper without an id gets one.
// The returned effect is nil unless the paper carries both a file URL and a canonical URL.
func (s *Selection) Select(paper domain.Paper) (domain.Paper, *DownloadEffect) {
	if paper.ID == "" {
		paper.ID = s.newID()
	}

	s.mu.Lock()
	s.current = paper
	s.selected = true
	s.progress.reset()
	s.mu.Unlock()

	if !paper.CanDownload() {
		return paper, nil
	}
	return paper, &DownloadEffect{Paper: paper}
}

// Clear drops the selection and resets progress.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.current = domain.Paper{}
	s.selected = false
	s.progress.reset()
	s.mu.Unlock()
}

// Current returns the selected paper, if any.
func (s *Selection) Current() (domain.Paper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.selected
}

// CurrentAt returns the selected paper together with the progress epoch it owns.
func (s *Selection) CurrentAt() (domain.Paper, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.progress.Epoch(), s.selected
}

// CurrentID returns the selected paper's id or "".
func (s *Selection) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.selected {
		return ""
	}
	return s.current.ID
}
