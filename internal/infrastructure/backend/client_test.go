package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"AXpress/internal/domain"
)

type memorySaver struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memorySaver) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return n, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = buf.Bytes()
	return n, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *memorySaver) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	saver := &memorySaver{}
	return NewClient(server.URL+"/", saver, WithHTTPClient(server.Client())), saver
}

func decodeBody(t *testing.T, r *http.Request) map[string]string {
	t.Helper()

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode request body: %v", err)
	}
	return body
}

func TestSearchPapers(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/research_search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if body := decodeBody(t, r); body["domain"] != "AI" {
			t.Errorf("unexpected domain: %v", body)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id": 42, "title": "Fresh Article", "abstract": "Uses <i>deep</i> nets.", "authors": ["A", "B"],
			 "published_date": "2025-11-08", "categories": ["cs.AI", "cs.LG"],
			 "pdf_url": "http://x/a.pdf", "arxiv_url": "http://x/a"},
			{"id": "abc", "title": "No Categories", "abstract": "plain", "authors": [],
			 "published_date": "2025-11-07", "categories": [], "pdf_url": "http://x/b.pdf", "arxiv_url": ""}
		]}`))
	})

	papers, err := client.SearchPapers(context.Background(), domain.DomainAI)
	if err != nil {
		t.Fatalf("SearchPapers error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.ID != "42" || first.Domain != domain.DomainAI {
		t.Fatalf("unexpected identity: %+v", first)
	}
	if first.Source != "cs.AI, cs.LG" {
		t.Fatalf("unexpected source: %s", first.Source)
	}
	if first.URL != "http://x/a" || first.PDFURL != "http://x/a.pdf" {
		t.Fatalf("unexpected urls: %+v", first)
	}
	if first.Abstract != "Uses deep nets." {
		t.Fatalf("unexpected abstract: %s", first.Abstract)
	}

	second := papers[1]
	if second.ID != "abc" || second.Source != "arXiv" || second.URL != "http://x/b.pdf" {
		t.Fatalf("unexpected fallback mapping: %+v", second)
	}
}

func TestSearchPapersErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "remote error",
			status: http.StatusServiceUnavailable,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				var remote *domain.RemoteError
				if !errors.As(err, &remote) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if remote.Status != http.StatusServiceUnavailable || remote.StatusText != "Service Unavailable" {
					t.Fatalf("unexpected remote error: %+v", remote)
				}
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"data": [`,
			check:  expectParseError,
		},
		{
			name:   "missing envelope",
			status: http.StatusOK,
			body:   `{"papers": []}`,
			check:  expectParseError,
		},
		{
			name:   "wrong shape",
			status: http.StatusOK,
			body:   `{"data": "nope"}`,
			check:  expectParseError,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			})

			_, err := client.SearchPapers(context.Background(), domain.DomainCloud)
			testCase.check(t, err)
		})
	}
}

func expectParseError(t *testing.T, err error) {
	t.Helper()

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestRequestDownload(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/research_download" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["pdf_url"] != "http://x/a.pdf" || body["arxiv_url"] != "http://x/a" || body["title"] != "T" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = w.Write([]byte(`{"output_path": "C:\\out\\paper.pdf"}`))
	})

	record, err := client.RequestDownload(context.Background(), "http://x/a.pdf", "http://x/a", "T")
	if err != nil {
		t.Fatalf("RequestDownload error: %v", err)
	}
	if record.Title != "T" || record.Path != `C:\out\paper.pdf` {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestRequestDownloadMissingPath(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.RequestDownload(context.Background(), "a", "b", "c")
	expectParseError(t, err)
}

func TestRequestFile(t *testing.T) {
	t.Parallel()

	client, saver := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.EscapedPath() != "/research/files/my%20paper.pdf" {
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte("%PDF-1.7"))
	})

	written, err := client.RequestFile(context.Background(), `C:\out\my paper.pdf`)
	if err != nil {
		t.Fatalf("RequestFile error: %v", err)
	}
	if written != int64(len("%PDF-1.7")) {
		t.Fatalf("unexpected written count: %d", written)
	}
	if string(saver.files["my paper.pdf"]) != "%PDF-1.7" {
		t.Fatalf("file not saved under basename: %v", saver.files)
	}
}

func TestRequestSummary(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summary" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if body := decodeBody(t, r); body["path"] != "C:/out/paper.pdf" {
			t.Errorf("unexpected path field: %v", body)
		}
		_, _ = w.Write([]byte(`{"title": "T", "summary": "short", "pdf_link": "C:/out/paper.pdf"}`))
	})

	summary, err := client.RequestSummary(context.Background(), "C:/out/paper.pdf")
	if err != nil {
		t.Fatalf("RequestSummary error: %v", err)
	}
	if summary.Title != "T" || summary.Text != "short" || summary.PDFLink != "C:/out/paper.pdf" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRequestSummaryRejectsMissingSummary(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"null":       `null`,
		"empty":      `{}`,
		"unexpected": `{"unexpected": 1}`,
		"blank":      `{"title": "T", "summary": "  "}`,
	}
	for name, body := range bodies {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			summary, err := client.RequestSummary(context.Background(), "out/paper.pdf")
			expectParseError(t, err)
			if summary != (domain.Summary{}) {
				t.Fatalf("expected zero summary on parse error, got %+v", summary)
			}
		})
	}
}

func TestRequestQuiz(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data": [
			{"question": "q1", "answer": "O", "explanation": "e1"},
			{"question": "q2", "answer": "X", "explanation": "e2"}
		]}`))
	})

	quiz, err := client.RequestQuiz(context.Background(), "out/paper.pdf")
	if err != nil {
		t.Fatalf("RequestQuiz error: %v", err)
	}
	if len(quiz) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(quiz))
	}
	if quiz[0].Answer != domain.AnswerO || quiz[1].Answer != domain.AnswerX || quiz[1].Explanation != "e2" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

func TestRequestQuizInvalidAnswer(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"question": "q1", "answer": "yes", "explanation": ""}]}`))
	})

	_, err := client.RequestQuiz(context.Background(), "out/paper.pdf")
	expectParseError(t, err)
}

func TestRequestAudioAndStreaming(t *testing.T) {
	t.Parallel()

	client, saver := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tts/from-pdf-path":
			if body := decodeBody(t, r); body["pdf_path"] != "out/paper.pdf" {
				t.Errorf("unexpected pdf_path: %v", body)
			}
			_, _ = w.Write([]byte(`{"message": "ok", "pdf_path": "out/paper.pdf", "summary": "s",
				"explainer": "script", "tts_id": "job-1", "audio_file": "job 1.mp3",
				"download_url": "/tts/job%201.mp3/download", "stream_url": "/tts/job%201.mp3/stream"}`))
		case "/tts/job 1.mp3/download":
			_, _ = w.Write([]byte("ID3"))
		default:
			http.NotFound(w, r)
		}
	})

	audio, err := client.RequestAudio(context.Background(), "out/paper.pdf")
	if err != nil {
		t.Fatalf("RequestAudio error: %v", err)
	}
	if audio.TTSID != "job-1" || audio.AudioFile != "job 1.mp3" || audio.Explainer != "script" {
		t.Fatalf("unexpected audio: %+v", audio)
	}

	stream := client.BuildStreamURL(audio.AudioFile)
	if stream != client.baseURL+"/tts/job%201.mp3/stream" {
		t.Fatalf("unexpected stream url: %s", stream)
	}

	if _, err := client.DownloadAudio(context.Background(), audio.AudioFile, "T"); err != nil {
		t.Fatalf("DownloadAudio error: %v", err)
	}
	if string(saver.files["T_explainer.mp3"]) != "ID3" {
		t.Fatalf("audio not saved under title name: %v", saver.files)
	}
}

func TestDownloadRemoteError(t *testing.T) {
	t.Parallel()

	client, saver := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.DownloadAudio(context.Background(), "missing.mp3", "T")
	var remote *domain.RemoteError
	if !errors.As(err, &remote) || remote.Status != http.StatusNotFound {
		t.Fatalf("expected 404 RemoteError, got %v", err)
	}
	if len(saver.files) != 0 {
		t.Fatalf("expected nothing saved, got %v", saver.files)
	}
}
