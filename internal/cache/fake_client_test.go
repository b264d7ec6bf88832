package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"AXpress/internal/domain"
	"AXpress/internal/ports"
)

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int
	paths map[string][]string

	searchErr   error
	downloadErr error
	summaryErr  error
	papers      []domain.Paper
	outputPath  string
	gate        chan struct{}
}

var _ ports.ResourceClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:      map[string]int{},
		paths:      map[string][]string{},
		outputPath: `C:\out\paper.pdf`,
	}
}

func (f *fakeClient) record(op, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.paths[op] = append(f.paths[op], arg)
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, n := range f.calls {
		sum += n
	}
	return sum
}

func (f *fakeClient) lastArg(op string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := f.paths[op]
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}

func (f *fakeClient) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeClient) failures() (search, download, summary error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchErr, f.downloadErr, f.summaryErr
}

func (f *fakeClient) setSearchErr(err error) {
	f.mu.Lock()
	f.searchErr = err
	f.mu.Unlock()
}

func (f *fakeClient) setSummaryErr(err error) {
	f.mu.Lock()
	f.summaryErr = err
	f.mu.Unlock()
}

func (f *fakeClient) SearchPapers(ctx context.Context, d domain.Domain) ([]domain.Paper, error) {
	f.record("search", string(d))
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if err, _, _ := f.failures(); err != nil {
		return nil, err
	}
	return f.papers, nil
}

func (f *fakeClient) RequestDownload(ctx context.Context, fileURL, canonicalURL, title string) (domain.DownloadRecord, error) {
	f.record("download", fileURL+"|"+canonicalURL+"|"+title)
	if _, err, _ := f.failures(); err != nil {
		return domain.DownloadRecord{}, err
	}
	return domain.DownloadRecord{Title: title, Path: f.outputPath}, nil
}

func (f *fakeClient) RequestFile(ctx context.Context, storagePath string) (int64, error) {
	f.record("file", storagePath)
	return 7, nil
}

func (f *fakeClient) RequestSummary(ctx context.Context, normalizedPath string) (domain.Summary, error) {
	f.record("summary", normalizedPath)
	if err := f.wait(ctx); err != nil {
		return domain.Summary{}, err
	}
	if _, _, err := f.failures(); err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{Title: "T", Text: fmt.Sprintf("summary #%d", f.count("summary")), PDFLink: normalizedPath}, nil
}

func (f *fakeClient) RequestQuiz(ctx context.Context, normalizedPath string) (domain.Quiz, error) {
	f.record("quiz", normalizedPath)
	return domain.Quiz{
		{Question: "q1", Answer: domain.AnswerO},
		{Question: "q2", Answer: domain.AnswerX},
	}, nil
}

func (f *fakeClient) RequestAudio(ctx context.Context, normalizedPath string) (domain.Audio, error) {
	f.record("audio", normalizedPath)
	return domain.Audio{TTSID: "job-1", AudioFile: "job-1.mp3"}, nil
}

func (f *fakeClient) BuildStreamURL(audioFile string) string {
	return "http://backend/tts/" + audioFile + "/stream"
}

func (f *fakeClient) DownloadAudio(ctx context.Context, audioFile, title string) (int64, error) {
	f.record("audio_download", audioFile+"|"+title)
	return 3, nil
}

var errBackend = errors.New("backend down")

func fivePapers() []domain.Paper {
	papers := make([]domain.Paper, 0, 5)
	for i := 0; i < 5; i++ {
		papers = append(papers, domain.Paper{
			ID:     fmt.Sprintf("%d", i+1),
			Domain: domain.DomainAI,
			Title:  fmt.Sprintf("Paper %d", i+1),
			URL:    fmt.Sprintf("http://x/%d", i+1),
			PDFURL: fmt.Sprintf("http://x/%d.pdf", i+1),
		})
	}
	return papers
}

func downloadablePaper() domain.Paper {
	return domain.Paper{Title: "T", URL: "http://x/a", PDFURL: "http://x/a.pdf"}
}
