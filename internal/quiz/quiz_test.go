package quiz

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/smartdex/internal/domain"
)

func deck(n int) []domain.Card {
	cards := make([]domain.Card, n)
	for i := range cards {
		cards[i] = domain.Card{
			ID:    fmt.Sprintf("card-%d", i),
			Front: fmt.Sprintf("front %d", i),
			Back:  fmt.Sprintf("back %d", i),
		}
	}
	return cards
}

func seeded(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"multiple-choice", "true-false", "typing"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	_, err := ParseMode("mixed")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestGenerateNoRepeats(t *testing.T) {
	g := seeded(1)
	cards := deck(8)

	for _, count := range []int{1, 5, 8, 20} {
		questions := g.Generate(cards, count, Typing)
		assert.Len(t, questions, min(count, len(cards)))

		seen := map[string]bool{}
		for _, q := range questions {
			assert.False(t, seen[q.CardID], "card %s repeated", q.CardID)
			seen[q.CardID] = true
		}
	}
}

func TestGenerateDeduplicatesInput(t *testing.T) {
	cards := append(deck(3), deck(3)...)
	questions := seeded(2).Generate(cards, 10, Typing)
	assert.Len(t, questions, 3)
}

func TestGenerateQuestionContent(t *testing.T) {
	cards := deck(5)
	byID := map[string]domain.Card{}
	for _, c := range cards {
		byID[c.ID] = c
	}

	for _, mode := range []Mode{Typing, TrueFalse} {
		for _, q := range seeded(3).Generate(cards, 5, mode) {
			c := byID[q.CardID]
			assert.Equal(t, c.Front, q.Question)
			assert.Equal(t, c.Back, q.CorrectAnswer)
			assert.Nil(t, q.Options, "mode %s", mode)
		}
	}
}

func TestGenerateMultipleChoiceOptions(t *testing.T) {
	g := seeded(4)
	for _, q := range g.Generate(deck(10), 10, MultipleChoice) {
		assert.Len(t, q.Options, 4)

		hits := 0
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "correct answer must appear exactly once")
	}
}

func TestGenerateMultipleChoiceSmallDeck(t *testing.T) {
	questions := seeded(5).Generate(deck(2), 10, MultipleChoice)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Len(t, q.Options, 2)
		assert.Contains(t, q.Options, q.CorrectAnswer)
	}

	single := seeded(5).Generate(deck(1), 10, MultipleChoice)
	require.Len(t, single, 1)
	assert.Equal(t, []string{"back 0"}, single[0].Options)
}

func TestGenerateSkipsDuplicateBacks(t *testing.T) {
	cards := deck(5)
	cards[1].Back = cards[0].Back
	cards[2].Back = cards[0].Back

	for _, q := range seeded(6).Generate(cards, 5, MultipleChoice) {
		counts := map[string]int{}
		for _, o := range q.Options {
			counts[o]++
		}
		for o, n := range counts {
			assert.Equal(t, 1, n, "option %q duplicated", o)
		}
		assert.Equal(t, 1, counts[q.CorrectAnswer])
	}
}

func TestGenerateSkipsBacksThatGradeAlike(t *testing.T) {
	cards := deck(5)
	cards[0].Back = "Paris"
	cards[1].Back = "paris "
	cards[2].Back = " PARIS"

	for seed := uint64(0); seed < 20; seed++ {
		for _, q := range seeded(seed).Generate(cards, 5, MultipleChoice) {
			matches := 0
			for _, o := range q.Options {
				if CheckAnswer(o, q.CorrectAnswer) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "options %q for %q", q.Options, q.CorrectAnswer)
		}
	}
}

func TestGenerateCorrectAnswerPositionVaries(t *testing.T) {
	g := seeded(7)
	cards := deck(6)
	positions := map[int]int{}

	for i := 0; i < 400; i++ {
		for _, q := range g.Generate(cards, 1, MultipleChoice) {
			for pos, o := range q.Options {
				if o == q.CorrectAnswer {
					positions[pos]++
				}
			}
		}
	}

	for pos := 0; pos < 4; pos++ {
		assert.Greater(t, positions[pos], 50, "position %d rarely used: %v", pos, positions)
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	g := NewGenerator(nil)

	assert.Empty(t, g.Generate(nil, 10, MultipleChoice))
	assert.Empty(t, g.Generate(deck(4), 0, MultipleChoice))
	assert.Empty(t, g.Generate(deck(4), -2, Typing))
	assert.NotNil(t, g.Generate(nil, 10, Typing))
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	cards := deck(6)
	before := append([]domain.Card(nil), cards...)
	seeded(8).Generate(cards, 6, MultipleChoice)
	assert.Equal(t, before, cards)
}

func TestCheckAnswer(t *testing.T) {
	testCases := []struct {
		given, correct string
		expected       bool
	}{
		{"Hello", "Hello", true},
		{"  hello\n", "Hello", true},
		{"HELLO", " hello ", true},
		{"Hallo", "Hello", false},
		{"", "Hello", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CheckAnswer(tc.given, tc.correct), "%q vs %q", tc.given, tc.correct)
	}
}

func TestGrade(t *testing.T) {
	questions := []Question{
		{CardID: "a", CorrectAnswer: "Hello"},
		{CardID: "b", CorrectAnswer: "Thank you"},
		{CardID: "c", CorrectAnswer: "Goodbye"},
	}

	score := Grade(questions, map[string]string{
		"a": " hello",
		"b": "thanks",
	})

	assert.Equal(t, 1, score.Correct)
	assert.Equal(t, 3, score.Total)
	assert.Equal(t, 33, score.Percentage)
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": false}, score.Results)

	assert.Zero(t, Grade(nil, nil).Percentage)
}
