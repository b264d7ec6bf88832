package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"AXpress/internal/domain"
	"AXpress/internal/usecase"
)

type missionOptions struct {
	domain    string
	index     int
	answers   string
	savePDF   bool
	saveAudio bool
}

func newMissionCommand(ctx *commandContext) *cobra.Command {
	var opts missionOptions

	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Select a paper and walk its summary, quiz, narration and history steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDomain(opts.domain)
			if err != nil {
				return err
			}
			answers, err := parseAnswers(opts.answers)
			if err != nil {
				return err
			}
			application, err := ctx.application(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ctx.close()

			session := application.NewSession()
			papers, err := session.Papers(cmd.Context(), d)
			if err != nil {
				return err
			}
			if opts.index < 1 || opts.index > len(papers) {
				return fmt.Errorf("--index %d out of range: %s has %d papers", opts.index, d, len(papers))
			}

			paper := session.SelectPaper(papers[opts.index-1])
			session.WaitEffects()
			return runMission(cmd, session, paper, answers, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.domain, "domain", "d", "", "Domain label or alias")
	cmd.Flags().IntVarP(&opts.index, "index", "i", 1, "1-based paper position in the domain list")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "Quiz answers as a string of O and X, one per question")
	cmd.Flags().BoolVar(&opts.savePDF, "save-pdf", false, "Save the paper file into the download directory")
	cmd.Flags().BoolVar(&opts.saveAudio, "save-audio", false, "Save the narration into the download directory")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func runMission(cmd *cobra.Command, session *usecase.Session, paper domain.Paper, answers []bool, opts missionOptions) error {
	out := cmd.OutOrStdout()
	runCtx := cmd.Context()

	fmt.Fprintf(out, "Paper: %s\n", paper.Title)
	if !paper.CanDownload() {
		return fmt.Errorf("paper %q has no downloadable file", paper.Title)
	}

	if opts.savePDF {
		written, err := session.SavePaperFile(runCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved paper file (%s)\n", humanize.Bytes(uint64(written)))
	}

	summary, err := session.OpenSummary(runCtx)
	if err != nil {
		return err
	}
	printSection(out, domain.StepSummary)
	fmt.Fprintln(out, summary.Text)
	if summary.PDFLink != "" {
		fmt.Fprintf(out, "PDF: %s\n", summary.PDFLink)
	}

	quiz, err := session.OpenQuiz(runCtx)
	if err != nil {
		return err
	}
	printSection(out, domain.StepQuiz)
	for i, question := range quiz {
		fmt.Fprintf(out, "%d. %s\n", i+1, question.Question)
	}
	if answers != nil {
		result, err := session.SubmitQuiz(answers)
		if err != nil {
			return err
		}
		for i, graded := range result.Questions {
			mark := "wrong"
			if graded.Correct {
				mark = "correct"
			}
			fmt.Fprintf(out, "%d. %s (answer %s): %s\n", i+1, mark, graded.Question.Answer, graded.Question.Explanation)
		}
		fmt.Fprintf(out, "Score: %d/%d\n", result.Correct, result.Total)
	}

	audio, stream, err := session.OpenAudio(runCtx)
	if err != nil {
		return err
	}
	printSection(out, domain.StepTTS)
	if audio.Message != "" {
		fmt.Fprintln(out, audio.Message)
	}
	fmt.Fprintf(out, "Stream: %s\n", stream)
	if opts.saveAudio {
		written, err := session.SaveAudioFile(runCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s (%s)\n", domain.AudioSaveName(paper.Title), humanize.Bytes(uint64(written)))
		if err := session.FinishPlayback(); err != nil {
			return err
		}
	}

	if session.CanProceed(domain.StepTTS) {
		if err := session.VisitHistory(); err != nil {
			return err
		}
	}

	printSection(out, domain.StepHistory)
	printOverview(out, session)
	return nil
}

func printSection(out io.Writer, step domain.MissionStep) {
	fmt.Fprintf(out, "\n== %s ==\n", step)
}

func printOverview(out io.Writer, session *usecase.Session) {
	rows := make([][]string, 0, len(domain.Steps()))
	for _, status := range session.Overview() {
		rows = append(rows, []string{string(status.Step), yesNo(status.Done), yesNo(status.Reachable)})
	}
	fmt.Fprintln(out, renderTable([]string{"Step", "Done", "Reachable"}, rows, false))
}

func parseAnswers(value string) ([]bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	answers := make([]bool, 0, len(value))
	for _, r := range strings.ToUpper(value) {
		answer, err := domain.ParseQuizAnswer(string(r))
		if err != nil {
			return nil, errors.Join(errors.New("invalid --answers"), err)
		}
		answers = append(answers, answer.Bool())
	}
	return answers, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
