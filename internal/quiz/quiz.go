// Package quiz turns cards into quiz questions and scores the answers.
package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/conorfennell/smartdex/internal/domain"
)

// Mode selects how questions are answered.
type Mode string

const (
	MultipleChoice Mode = "multiple-choice"
	// TrueFalse is accepted for compatibility and generates the same
	// questions as Typing: no options, a free-text answer.
	TrueFalse Mode = "true-false"
	Typing    Mode = "typing"
)

// DefaultCount is the number of questions when the caller does not pick one.
const DefaultCount = 10

const distractorCount = 3

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case MultipleChoice, TrueFalse, Typing:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown quiz mode %q", domain.ErrInvalid, s)
}

// Question is one quiz item built from a card.
type Question struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options,omitempty"`
	CardID        string   `json:"cardId"`
}

// Generator builds quizzes. A nil rng uses the global random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate picks min(count, len(cards)) distinct cards at random and turns
// each into a question. In MultipleChoice mode every question carries up to
// three distractors taken from the other cards' backs, mixed with the correct
// answer at a random position.
func (g *Generator) Generate(cards []domain.Card, count int, mode Mode) []Question {
	pool := uniqueByID(cards)
	if count <= 0 || len(pool) == 0 {
		return []Question{}
	}

	g.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	selected := pool[:min(count, len(pool))]

	questions := make([]Question, 0, len(selected))
	for _, c := range selected {
		q := Question{
			Question:      c.Front,
			CorrectAnswer: c.Back,
			CardID:        c.ID,
		}
		if mode == MultipleChoice {
			q.Options = g.options(c, pool)
		}
		questions = append(questions, q)
	}
	return questions
}

func (g *Generator) options(c domain.Card, pool []domain.Card) []string {
	others := make([]domain.Card, 0, len(pool))
	for _, o := range pool {
		if o.ID != c.ID {
			others = append(others, o)
		}
	}
	g.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	// Options that CheckAnswer would treat as equal count once.
	options := []string{c.Back}
	seen := map[string]bool{normalizeAnswer(c.Back): true}
	for _, o := range others {
		if len(options) > distractorCount {
			break
		}
		key := normalizeAnswer(o.Back)
		if seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, o.Back)
	}

	g.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	if g.rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	g.rng.Shuffle(n, swap)
}

func uniqueByID(cards []domain.Card) []domain.Card {
	seen := make(map[string]bool, len(cards))
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// CheckAnswer compares a given answer with the correct one, ignoring case
// and surrounding whitespace.
func CheckAnswer(given, correct string) bool {
	return normalizeAnswer(given) == normalizeAnswer(correct)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score is the outcome of a graded quiz.
type Score struct {
	Correct    int             `json:"correct"`
	Total      int             `json:"total"`
	Percentage int             `json:"percentage"`
	Results    map[string]bool `json:"results"`
}

// Grade scores answers keyed by card ID against the questions. Unanswered
// questions count as wrong.
func Grade(questions []Question, answers map[string]string) Score {
	s := Score{Total: len(questions), Results: make(map[string]bool, len(questions))}
	for _, q := range questions {
		given, answered := answers[q.CardID]
		ok := answered && CheckAnswer(given, q.CorrectAnswer)
		s.Results[q.CardID] = ok
		if ok {
			s.Correct++
		}
	}
	s.Percentage = domain.Percent(s.Correct, s.Total)
	return s
}
