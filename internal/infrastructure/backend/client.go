package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"AXpress/internal/domain"
	"AXpress/internal/infrastructure/parser"
	"AXpress/internal/ports"
)

const (
	userAgent      = "AXpress/1.0"
	defaultTimeout = 10 * time.Minute
)

// Client talks to the research backend for search, download and derived artifacts.
type Client struct {
	baseURL string
	http    *http.Client
	saver   ports.FileSaver
}

var _ ports.ResourceClient = (*Client)(nil)

// Option mutates client configuration.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a client rooted at baseURL; saver receives raw file downloads.
func NewClient(baseURL string, saver ports.FileSaver, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		saver:   saver,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// SearchPapers lists the backend's papers for one domain.
func (c *Client) SearchPapers(ctx context.Context, d domain.Domain) ([]domain.Paper, error) {
	var resp searchResponse
	if err := c.post(ctx, "research_search", "/research_search", map[string]string{"domain": string(d)}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &domain.ParseError{Op: "research_search", Err: errors.New("missing data field")}
	}

	papers := make([]domain.Paper, 0, len(*resp.Data))
	for _, item := range *resp.Data {
		papers = append(papers, item.toPaper(d))
	}
	return papers, nil
}

// RequestDownload asks the backend to fetch a paper file and reports where it stored it.
func (c *Client) RequestDownload(ctx context.Context, fileURL, canonicalURL, title string) (domain.DownloadRecord, error) {
	payload := map[string]string{
		"pdf_url":   fileURL,
		"arxiv_url": canonicalURL,
		"title":     title,
	}

	var resp struct {
		OutputPath string `json:"output_path"`
	}
	if err := c.post(ctx, "research_download", "/research_download", payload, &resp); err != nil {
		return domain.DownloadRecord{}, err
	}
	if resp.OutputPath == "" {
		return domain.DownloadRecord{}, &domain.ParseError{Op: "research_download", Err: errors.New("missing output_path")}
	}

	return domain.DownloadRecord{Title: title, Path: resp.OutputPath}, nil
}

// RequestFile downloads a stored paper file and saves it under its basename.
func (c *Client) RequestFile(ctx context.Context, storagePath string) (int64, error) {
	filename := domain.Basename(storagePath)
	if filename == "" {
		return 0, fmt.Errorf("research file: empty filename in %q", storagePath)
	}
	return c.download(ctx, "research_file", "/research/files/"+url.PathEscape(filename), filename)
}

// RequestSummary generates the summary for a stored paper.
func (c *Client) RequestSummary(ctx context.Context, normalizedPath string) (domain.Summary, error) {
	var resp struct {
		Title   string  `json:"title"`
		Summary *string `json:"summary"`
		PDFLink string  `json:"pdf_link"`
	}
	if err := c.post(ctx, "summary", "/summary", map[string]string{"path": normalizedPath}, &resp); err != nil {
		return domain.Summary{}, err
	}
	if resp.Summary == nil {
		return domain.Summary{}, &domain.ParseError{Op: "summary", Err: errors.New("missing summary field")}
	}
	if strings.TrimSpace(*resp.Summary) == "" {
		return domain.Summary{}, &domain.ParseError{Op: "summary", Err: errors.New("empty summary")}
	}

	return domain.Summary{Title: resp.Title, Text: *resp.Summary, PDFLink: resp.PDFLink}, nil
}

// RequestQuiz generates the O/X quiz for a stored paper.
func (c *Client) RequestQuiz(ctx context.Context, normalizedPath string) (domain.Quiz, error) {
	var resp struct {
		Data *[]struct {
			Question    string `json:"question"`
			Answer      string `json:"answer"`
			Explanation string `json:"explanation"`
		} `json:"data"`
	}
	if err := c.post(ctx, "quiz", "/quiz", map[string]string{"path": normalizedPath}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &domain.ParseError{Op: "quiz", Err: errors.New("missing data field")}
	}

	quiz := make(domain.Quiz, 0, len(*resp.Data))
	for i, item := range *resp.Data {
		answer, err := domain.ParseQuizAnswer(item.Answer)
		if err != nil {
			return nil, &domain.ParseError{Op: "quiz", Err: fmt.Errorf("question %d: %w", i+1, err)}
		}
		quiz = append(quiz, domain.QuizQuestion{
			Question:    item.Question,
			Answer:      answer,
			Explanation: item.Explanation,
		})
	}
	return quiz, nil
}

// RequestAudio starts narration for a stored paper.
func (c *Client) RequestAudio(ctx context.Context, normalizedPath string) (domain.Audio, error) {
	var resp struct {
		Message     string `json:"message"`
		PDFPath     string `json:"pdf_path"`
		Summary     string `json:"summary"`
		Explainer   string `json:"explainer"`
		TTSID       string `json:"tts_id"`
		AudioFile   string `json:"audio_file"`
		DownloadURL string `json:"download_url"`
		StreamURL   string `json:"stream_url"`
	}
	if err := c.post(ctx, "tts", "/tts/from-pdf-path", map[string]string{"pdf_path": normalizedPath}, &resp); err != nil {
		return domain.Audio{}, err
	}
	if resp.AudioFile == "" {
		return domain.Audio{}, &domain.ParseError{Op: "tts", Err: errors.New("missing audio_file")}
	}

	return domain.Audio{
		Message:     resp.Message,
		PDFPath:     resp.PDFPath,
		Summary:     resp.Summary,
		Explainer:   resp.Explainer,
		TTSID:       resp.TTSID,
		AudioFile:   resp.AudioFile,
		DownloadURL: resp.DownloadURL,
		StreamURL:   resp.StreamURL,
	}, nil
}

// BuildStreamURL returns the streaming endpoint of an audio file without calling it.
func (c *Client) BuildStreamURL(audioFile string) string {
	return c.baseURL + "/tts/" + url.PathEscape(audioFile) + "/stream"
}

// DownloadAudio fetches narration bytes and saves them as "{title}_explainer.mp3".
func (c *Client) DownloadAudio(ctx context.Context, audioFile, title string) (int64, error) {
	return c.download(ctx, "tts_download", "/tts/"+url.PathEscape(audioFile)+"/download", domain.AudioSaveName(title))
}

func (c *Client) post(ctx context.Context, op, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.ParseError{Op: op, Err: err}
	}

	return nil
}

func (c *Client) download(ctx context.Context, op, path, saveAs string) (int64, error) {
	if c.saver == nil {
		return 0, fmt.Errorf("%s: file saver is not configured", op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return 0, err
	}

	written, err := c.saver.Save(ctx, saveAs, resp.Body)
	if err != nil {
		return written, fmt.Errorf("%s: save %s: %w", op, saveAs, err)
	}
	return written, nil
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return &domain.RemoteError{
		Op:         op,
		Status:     resp.StatusCode,
		StatusText: reasonPhrase(resp),
	}
}

func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

type searchResponse struct {
	Data *[]apiPaper `json:"data"`
}

type apiPaper struct {
	ID             json.RawMessage `json:"id"`
	Title          string          `json:"title"`
	Abstract       string          `json:"abstract"`
	Authors        []string        `json:"authors"`
	PublishedDate  string          `json:"published_date"`
	UpdatedDate    string          `json:"updated_date"`
	Categories     []string        `json:"categories"`
	PDFURL         string          `json:"pdf_url"`
	ArxivURL       string          `json:"arxiv_url"`
	CitationCount  int             `json:"citation_count"`
	RelevanceScore float64         `json:"relevance_score"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

func (p apiPaper) toPaper(d domain.Domain) domain.Paper {
	source := strings.Join(p.Categories, ", ")
	if source == "" {
		source = "arXiv"
	}

	canonical := p.ArxivURL
	if canonical == "" {
		canonical = p.PDFURL
	}

	return domain.Paper{
		ID:          rawID(p.ID),
		Domain:      d,
		Title:       p.Title,
		Authors:     p.Authors,
		Abstract:    parser.PlainText(p.Abstract),
		PublishedAt: p.PublishedDate,
		Source:      source,
		URL:         canonical,
		PDFURL:      p.PDFURL,
		ArxivURL:    p.ArxivURL,
	}
}

// rawID stringifies an id reported either as a JSON number or a JSON string.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
