package domain

import "fmt"

// Summary is the AI-generated summary of a downloaded paper.
type Summary struct {
	Title   string
	Text    string
	PDFLink string
}

// QuizAnswer is the binary answer of a quiz question.
type QuizAnswer string

const (
	AnswerO QuizAnswer = "O"
	AnswerX QuizAnswer = "X"
)

// ParseQuizAnswer accepts only O or X.
func ParseQuizAnswer(value string) (QuizAnswer, error) {
	switch QuizAnswer(value) {
	case AnswerO, AnswerX:
		return QuizAnswer(value), nil
	default:
		return "", fmt.Errorf("quiz answer %q is neither O nor X", value)
	}
}

// Bool maps O to true and X to false.
func (a QuizAnswer) Bool() bool {
	return a == AnswerO
}

// QuizQuestion is one true/false question generated from a paper.
type QuizQuestion struct {
	Question    string
	Answer      QuizAnswer
	Explanation string
}

// Quiz is the ordered question set for one paper.
type Quiz []QuizQuestion

// Audio describes a narrated-audio job produced by the TTS backend.
type Audio struct {
	Message     string
	PDFPath     string
	Summary     string
	Explainer   string
	TTSID       string
	AudioFile   string
	DownloadURL string
	StreamURL   string
}

// AudioSaveName is the local file name used when saving narration for title.
func AudioSaveName(title string) string {
	return title + "_explainer.mp3"
}
