package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/smartdex/internal/quiz"
	"github.com/conorfennell/smartdex/internal/sm2"
)

var errQuit = errors.New("quit")

// prompter reads one answer per line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints prompt and returns the next line. "q" on its own or the end of
// the input returns errQuit.
func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(p.in.Text())
	if line == "q" {
		return "", errQuit
	}
	return line, nil
}

func (p *prompter) askQuality() (int, error) {
	for {
		line, err := p.ask(fmt.Sprintf("How well did you recall it? (%d-%d, q to quit): ", sm2.MinQuality, sm2.MaxQuality))
		if err != nil {
			return 0, err
		}
		q, err := strconv.Atoi(line)
		if err == nil && q >= sm2.MinQuality && q <= sm2.MaxQuality {
			return q, nil
		}
		fmt.Fprintf(p.out, "Please enter a number from %d to %d.\n", sm2.MinQuality, sm2.MaxQuality)
	}
}

func newStudyCmd(a *app) *cobra.Command {
	var deckRef string
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Study the cards that are due",
		Long:  "Study shows each due card, reveals the answer and asks how well you recalled it. Without --deck all decks are studied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.study(cmd.Context(), deckRef, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVar(&deckRef, "deck", "", "deck ID or title")
	return cmd
}

func (a *app) study(ctx context.Context, deckRef string, p *prompter) error {
	deckID := ""
	if deckRef != "" {
		deck, err := a.resolveDeck(ctx, deckRef)
		if err != nil {
			return err
		}
		deckID = deck.ID
	}

	sess, err := a.svc.StartSession(ctx, deckID, a.cfg.Study.Limit)
	if err != nil {
		return err
	}
	if sess.Remaining() == 0 {
		fmt.Fprintln(p.out, "Nothing to study right now.")
		return nil
	}

	for {
		card, ok := sess.Current()
		if !ok {
			break
		}
		fmt.Fprintf(p.out, "\n[%d left] %s\n", sess.Remaining(), card.Front)
		if card.Hint != "" {
			fmt.Fprintf(p.out, "Hint: %s\n", card.Hint)
		}
		if _, err := p.ask("Press Enter to show the answer. "); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			return err
		}
		fmt.Fprintf(p.out, "Answer: %s\n", card.Back)

		q, err := p.askQuality()
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			return err
		}
		out, err := sess.Answer(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Next review in %d day(s).\n", out.Card.Interval)
	}

	st := sess.Stats
	fmt.Fprintf(p.out, "\nSession complete: %d reviewed, %d correct, %d incorrect (%d%%).\n",
		st.Total, st.Correct, st.Incorrect, st.Accuracy())
	return nil
}

func newQuizCmd(a *app) *cobra.Command {
	var deckRef string
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a quiz on a deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.quiz(cmd.Context(), deckRef, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVar(&deckRef, "deck", "", "deck ID or title")
	_ = cmd.MarkFlagRequired("deck")
	return cmd
}

func (a *app) quiz(ctx context.Context, deckRef string, p *prompter) error {
	deck, err := a.resolveDeck(ctx, deckRef)
	if err != nil {
		return err
	}
	mode, err := quiz.ParseMode(a.cfg.Quiz.Mode)
	if err != nil {
		return err
	}
	questions, err := a.svc.Quiz(ctx, deck.ID, a.cfg.Quiz.Count, mode)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Fprintln(p.out, "This deck has no cards.")
		return nil
	}

	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		fmt.Fprintf(p.out, "\nQuestion %d/%d: %s\n", i+1, len(questions), q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", j+1, opt)
		}
		line, err := p.ask("Your answer: ")
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			return err
		}
		answer := chooseOption(line, q.Options)
		answers[q.CardID] = answer
		if quiz.CheckAnswer(answer, q.CorrectAnswer) {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintf(p.out, "Wrong, the answer is: %s\n", q.CorrectAnswer)
		}
	}
	if len(answers) == 0 {
		return nil
	}

	score, err := a.svc.GradeQuiz(ctx, deck.ID, mode, answers)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nScore: %d/%d (%d%%)\n", score.Correct, score.Total, score.Percentage)
	return nil
}

// chooseOption turns an option number into the option's text.
func chooseOption(line string, options []string) string {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return line
}
