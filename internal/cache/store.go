package cache

import (
	"context"
	"fmt"
	"log/slog"

	"AXpress/internal/domain"
	"AXpress/internal/logging"
	"AXpress/internal/ports"
)

// Kind names one of the five cache categories.
type Kind string

const (
	KindPapers   Kind = "papers"
	KindDownload Kind = "download"
	KindSummary  Kind = "summary"
	KindQuiz     Kind = "quiz"
	KindAudio    Kind = "audio"
)

// Store sits in front of a ResourceClient and answers from memory whenever it can.
// Papers are keyed by domain; the other four categories are keyed by the literal paper title,
// so two papers sharing a title share their derived artifacts.
type Store struct {
	client ports.ResourceClient
	logger *slog.Logger

	papers    *Keyed[[]domain.Paper]
	downloads *Keyed[domain.DownloadRecord]
	summaries *Keyed[domain.Summary]
	quizzes   *Keyed[domain.Quiz]
	audio     *Keyed[domain.Audio]
}

// NewStore builds empty caches over client.
func NewStore(client ports.ResourceClient, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		client:    client,
		logger:    logger,
		papers:    NewKeyed[[]domain.Paper](string(KindPapers), logger),
		downloads: NewKeyed[domain.DownloadRecord](string(KindDownload), logger),
		summaries: NewKeyed[domain.Summary](string(KindSummary), logger),
		quizzes:   NewKeyed[domain.Quiz](string(KindQuiz), logger),
		audio:     NewKeyed[domain.Audio](string(KindAudio), logger),
	}
}

// State reports the cache state of key within one category.
func (s *Store) State(kind Kind, key string) State {
	switch kind {
	case KindPapers:
		return s.papers.State(key)
	case KindDownload:
		return s.downloads.State(key)
	case KindSummary:
		return s.summaries.State(key)
	case KindQuiz:
		return s.quizzes.State(key)
	case KindAudio:
		return s.audio.State(key)
	default:
		return Absent
	}
}

// CachedPapers returns the papers already fetched for d.
func (s *Store) CachedPapers(d domain.Domain) ([]domain.Paper, bool) {
	return s.papers.Get(string(d))
}

// FetchPapers returns cached papers for d or searches the backend once.
func (s *Store) FetchPapers(ctx context.Context, d domain.Domain) ([]domain.Paper, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("fetch papers: %w: %q", domain.ErrUnknownDomain, string(d))
	}

	papers, err := s.papers.FetchOrGet(ctx, string(d), func(ctx context.Context) ([]domain.Paper, error) {
		return s.client.SearchPapers(ctx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch papers %s: %w", d, err)
	}
	return papers, nil
}

// ClearPapers drops the given domains, or every domain when called without arguments.
// It is the only invalidation the store offers.
func (s *Store) ClearPapers(domains ...domain.Domain) {
	if len(domains) == 0 {
		s.papers.Flush()
		s.logger.Info("paper cache cleared")
		return
	}
	for _, d := range domains {
		s.papers.Delete(string(d))
	}
	s.logger.Info("paper cache cleared", "domains", len(domains))
}

// DownloadPath returns the stored download record for title.
func (s *Store) DownloadPath(title string) (domain.DownloadRecord, bool) {
	return s.downloads.Get(title)
}

// FetchDownload asks the backend to store the paper's file, once per title.
func (s *Store) FetchDownload(ctx context.Context, paper domain.Paper) (domain.DownloadRecord, error) {
	if !paper.CanDownload() {
		return domain.DownloadRecord{}, fmt.Errorf("fetch download %q: paper has no file url", paper.Title)
	}

	record, err := s.downloads.FetchOrGet(ctx, paper.Title, func(ctx context.Context) (domain.DownloadRecord, error) {
		return s.client.RequestDownload(ctx, paper.PDFURL, paper.URL, paper.Title)
	})
	if err != nil {
		return domain.DownloadRecord{}, fmt.Errorf("fetch download %q: %w", paper.Title, err)
	}
	return record, nil
}

// CachedSummary returns the summary already generated for title.
func (s *Store) CachedSummary(title string) (domain.Summary, bool) {
	return s.summaries.Get(title)
}

// FetchSummary returns the cached summary or generates it from the stored file.
func (s *Store) FetchSummary(ctx context.Context, title string) (domain.Summary, error) {
	return derive(ctx, s, s.summaries, KindSummary, title, s.client.RequestSummary)
}

// CachedQuiz returns the quiz already generated for title.
func (s *Store) CachedQuiz(title string) (domain.Quiz, bool) {
	return s.quizzes.Get(title)
}

// FetchQuiz returns the cached quiz or generates it from the stored file.
func (s *Store) FetchQuiz(ctx context.Context, title string) (domain.Quiz, error) {
	return derive(ctx, s, s.quizzes, KindQuiz, title, s.client.RequestQuiz)
}

// CachedAudio returns the narration job already created for title.
func (s *Store) CachedAudio(title string) (domain.Audio, bool) {
	return s.audio.Get(title)
}

// FetchAudio returns the cached narration job or starts one from the stored file.
func (s *Store) FetchAudio(ctx context.Context, title string) (domain.Audio, error) {
	return derive(ctx, s, s.audio, KindAudio, title, s.client.RequestAudio)
}

// StreamURL returns the streaming URL of title's cached narration.
func (s *Store) StreamURL(title string) (string, bool) {
	audio, ok := s.audio.Get(title)
	if !ok {
		return "", false
	}
	return s.client.BuildStreamURL(audio.AudioFile), true
}

// SavePaperFile saves the stored paper file of title locally.
func (s *Store) SavePaperFile(ctx context.Context, title string) (int64, error) {
	record, ok := s.downloads.Get(title)
	if !ok {
		return 0, &domain.PreconditionError{Title: title}
	}

	written, err := s.client.RequestFile(ctx, record.Path)
	if err != nil {
		return written, fmt.Errorf("save paper file %q: %w", title, err)
	}
	return written, nil
}

// SaveAudioFile saves title's narration locally, creating the narration job if needed.
func (s *Store) SaveAudioFile(ctx context.Context, title string) (int64, error) {
	audio, err := s.FetchAudio(ctx, title)
	if err != nil {
		return 0, err
	}

	written, err := s.client.DownloadAudio(ctx, audio.AudioFile, title)
	if err != nil {
		return written, fmt.Errorf("save audio file %q: %w", title, err)
	}
	return written, nil
}

// derive implements cache-or-fetch for the artifacts built from a stored paper file.
// Without a download record it fails with PreconditionError before any network call.
func derive[T any](
	ctx context.Context,
	s *Store,
	cache *Keyed[T],
	kind Kind,
	title string,
	request func(ctx context.Context, normalizedPath string) (T, error),
) (T, error) {
	value, err := cache.FetchOrGet(ctx, title, func(ctx context.Context) (T, error) {
		record, ok := s.downloads.Get(title)
		if !ok {
			var zero T
			return zero, &domain.PreconditionError{Title: title}
		}
		return request(ctx, record.NormalizedPath())
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s %q: %w", kind, title, err)
	}
	return value, nil
}
