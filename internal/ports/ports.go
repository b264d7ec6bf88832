package ports

import (
	"context"
	"io"

	"AXpress/internal/domain"
)

// ResourceClient issues exactly one backend call per operation and maps the response.
// It never caches or retries.
type ResourceClient interface {
	SearchPapers(ctx context.Context, d domain.Domain) ([]domain.Paper, error)
	RequestDownload(ctx context.Context, fileURL, canonicalURL, title string) (domain.DownloadRecord, error)
	RequestFile(ctx context.Context, storagePath string) (int64, error)
	RequestSummary(ctx context.Context, normalizedPath string) (domain.Summary, error)
	RequestQuiz(ctx context.Context, normalizedPath string) (domain.Quiz, error)
	RequestAudio(ctx context.Context, normalizedPath string) (domain.Audio, error)
	BuildStreamURL(audioFile string) string
	DownloadAudio(ctx context.Context, audioFile, title string) (int64, error)
}

// FileSaver performs a client-side save-as of downloaded bytes.
type FileSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
}

// EffectRunner executes detached side effects; failures are logged, never returned.
type EffectRunner interface {
	Go(name string, effect func(ctx context.Context) error)
	Wait()
}

// PaperCache is the cache-or-fetch surface the session relies on.
type PaperCache interface {
	FetchPapers(ctx context.Context, d domain.Domain) ([]domain.Paper, error)
	FetchDownload(ctx context.Context, paper domain.Paper) (domain.DownloadRecord, error)
	FetchSummary(ctx context.Context, title string) (domain.Summary, error)
	FetchQuiz(ctx context.Context, title string) (domain.Quiz, error)
	CachedQuiz(title string) (domain.Quiz, bool)
	FetchAudio(ctx context.Context, title string) (domain.Audio, error)
	StreamURL(title string) (string, bool)
	SavePaperFile(ctx context.Context, title string) (int64, error)
	SaveAudioFile(ctx context.Context, title string) (int64, error)
}
