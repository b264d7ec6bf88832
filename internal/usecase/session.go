package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"AXpress/internal/domain"
	"AXpress/internal/logging"
	"AXpress/internal/mission"
	"AXpress/internal/ports"
	"AXpress/internal/session"
)

var (
	// ErrNoSelection indicates a mission operation without a selected paper.
	ErrNoSelection = errors.New("axpress: no paper selected")
	// ErrQuizNotLoaded indicates a quiz submission before the quiz was fetched.
	ErrQuizNotLoaded = errors.New("axpress: quiz not loaded")
)

// SessionDeps wires the driven adapters of one user session.
type SessionDeps struct {
	Cache  ports.PaperCache
	Runner ports.EffectRunner
	Logger *slog.Logger
}

// Session is one user's browse-select-learn workflow over a shared cache.
type Session struct {
	cache     ports.PaperCache
	runner    ports.EffectRunner
	logger    *slog.Logger
	selection *session.Selection
}

// NewSession constructs a session with an empty selection.
func NewSession(deps SessionDeps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		cache:     deps.Cache,
		runner:    deps.Runner,
		logger:    logger,
		selection: session.NewSelection(session.NewProgress()),
	}
}

// Papers lists papers of one domain, from cache when possible.
func (s *Session) Papers(ctx context.Context, d domain.Domain) ([]domain.Paper, error) {
	return s.cache.FetchPapers(ctx, d)
}

// SelectPaper makes paper current and schedules its background download.
// Download failures are logged by the runner and never reach the caller.
func (s *Session) SelectPaper(paper domain.Paper) domain.Paper {
	selected, effect := s.selection.Select(paper)
	s.logger.Info("paper selected", "id", selected.ID, "title", selected.Title)

	if effect == nil {
		s.logger.Debug("paper has no downloadable file", "title", selected.Title)
		return selected
	}
	if s.runner == nil {
		s.logger.Warn("download skipped, no effect runner", "title", effect.Title())
		return selected
	}

	s.runner.Go("download "+effect.Title(), func(ctx context.Context) error {
		record, err := s.cache.FetchDownload(ctx, effect.Paper)
		if err != nil {
			return err
		}
		s.logger.Info("paper stored", "title", record.Title, "path", record.Path)
		return nil
	})
	return selected
}

// ClearPaper drops the selection and its progress.
func (s *Session) ClearPaper() {
	s.selection.Clear()
	s.logger.Info("paper selection cleared")
}

// Selected returns the current paper.
func (s *Session) Selected() (domain.Paper, bool) {
	return s.selection.Current()
}

// SelectedID returns the current paper id or "".
func (s *Session) SelectedID() string {
	return s.selection.CurrentID()
}

// WaitEffects blocks until scheduled background work has settled.
func (s *Session) WaitEffects() {
	if s.runner != nil {
		s.runner.Wait()
	}
}

// OpenSummary marks the summary step as visited and returns the summary.
func (s *Session) OpenSummary(ctx context.Context) (domain.Summary, error) {
	paper, epoch, err := s.current()
	if err != nil {
		return domain.Summary{}, err
	}
	s.mark(epoch, domain.StepSummary)

	return s.cache.FetchSummary(ctx, paper.Title)
}

// OpenQuiz returns the quiz; the step completes on SubmitQuiz.
func (s *Session) OpenQuiz(ctx context.Context) (domain.Quiz, error) {
	paper, _, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.cache.FetchQuiz(ctx, paper.Title)
}

// QuestionResult is the graded answer to one question.
type QuestionResult struct {
	Question domain.QuizQuestion
	Given    bool
	Correct  bool
}

// QuizResult is a graded quiz submission.
type QuizResult struct {
	Correct   int
	Total     int
	Questions []QuestionResult
}

// SubmitQuiz grades answers (true for O) against the loaded quiz and completes the quiz step.
func (s *Session) SubmitQuiz(answers []bool) (QuizResult, error) {
	paper, epoch, err := s.current()
	if err != nil {
		return QuizResult{}, err
	}

	quiz, ok := s.cache.CachedQuiz(paper.Title)
	if !ok {
		return QuizResult{}, fmt.Errorf("submit quiz %q: %w", paper.Title, ErrQuizNotLoaded)
	}
	if len(answers) != len(quiz) {
		return QuizResult{}, fmt.Errorf("submit quiz %q: got %d answers for %d questions", paper.Title, len(answers), len(quiz))
	}

	result := QuizResult{Total: len(quiz), Questions: make([]QuestionResult, 0, len(quiz))}
	for i, question := range quiz {
		correct := answers[i] == question.Answer.Bool()
		if correct {
			result.Correct++
		}
		result.Questions = append(result.Questions, QuestionResult{
			Question: question,
			Given:    answers[i],
			Correct:  correct,
		})
	}

	s.mark(epoch, domain.StepQuiz)
	s.logger.Info("quiz submitted", "title", paper.Title, "correct", result.Correct, "total", result.Total)
	return result, nil
}

// OpenAudio returns the narration job and its streaming URL.
func (s *Session) OpenAudio(ctx context.Context) (domain.Audio, string, error) {
	paper, _, err := s.current()
	if err != nil {
		return domain.Audio{}, "", err
	}

	audio, err := s.cache.FetchAudio(ctx, paper.Title)
	if err != nil {
		return domain.Audio{}, "", err
	}
	stream, _ := s.cache.StreamURL(paper.Title)
	return audio, stream, nil
}

// FinishPlayback completes the tts step once narration played to the end.
func (s *Session) FinishPlayback() error {
	_, epoch, err := s.current()
	if err != nil {
		return err
	}
	s.mark(epoch, domain.StepTTS)
	return nil
}

// VisitHistory completes the history step.
func (s *Session) VisitHistory() error {
	_, epoch, err := s.current()
	if err != nil {
		return err
	}
	s.mark(epoch, domain.StepHistory)
	return nil
}

// SavePaperFile saves the selected paper's stored file locally.
func (s *Session) SavePaperFile(ctx context.Context) (int64, error) {
	paper, _, err := s.current()
	if err != nil {
		return 0, err
	}
	return s.cache.SavePaperFile(ctx, paper.Title)
}

// SaveAudioFile saves the selected paper's narration locally.
func (s *Session) SaveAudioFile(ctx context.Context) (int64, error) {
	paper, _, err := s.current()
	if err != nil {
		return 0, err
	}
	return s.cache.SaveAudioFile(ctx, paper.Title)
}

// Progress returns a snapshot of completed steps.
func (s *Session) Progress() session.Completed {
	return s.selection.Progress().Snapshot()
}

// CanProceed reports whether the next-step affordance on page from is active.
func (s *Session) CanProceed(from domain.MissionStep) bool {
	return mission.CanProceed(s.Progress(), from)
}

// Overview returns the mission navigation rows.
func (s *Session) Overview() []mission.StepStatus {
	return mission.Overview(s.Progress())
}

// current returns the selected paper and the progress epoch it was read under.
func (s *Session) current() (domain.Paper, uint64, error) {
	paper, epoch, ok := s.selection.CurrentAt()
	if !ok {
		return domain.Paper{}, 0, ErrNoSelection
	}
	return paper, epoch, nil
}

// mark completes step unless the selection changed since epoch was read.
func (s *Session) mark(epoch uint64, step domain.MissionStep) {
	marked, err := s.selection.Progress().MarkCompleteAt(epoch, step)
	if err != nil {
		s.logger.Error("mark step", "step", step, "error", err)
		return
	}
	if !marked {
		s.logger.Debug("step mark dropped, selection changed", "step", step)
		return
	}
	s.logger.Debug("step completed", "step", step)
}
