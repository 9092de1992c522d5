package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/smartdex/internal/domain"
)

var now = time.Date(2024, 11, 28, 12, 0, 0, 0, time.UTC)

func card(id string, status domain.Status, offset time.Duration) domain.Card {
	return domain.Card{ID: id, Status: status, NextReview: now.Add(offset)}
}

func ids(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestSelectForStudyDeckScenario(t *testing.T) {
	cards := []domain.Card{
		card("future", domain.StatusReview, 72*time.Hour),
		card("past-recent", domain.StatusLearning, -1*time.Hour),
		card("new", domain.StatusNew, 0),
		card("past-old", domain.StatusReview, -48*time.Hour),
	}

	got := SelectForStudy(cards, 10, now)
	assert.Equal(t, []string{"new", "past-old", "past-recent"}, ids(got))
}

func TestSelectForStudyFilter(t *testing.T) {
	cards := []domain.Card{
		card("a", domain.StatusNew, 240*time.Hour),
		card("b", domain.StatusMastered, 0),
		card("c", domain.StatusMastered, time.Nanosecond),
		card("d", domain.StatusLearning, -time.Minute),
	}

	got := SelectForStudy(cards, DefaultLimit, now)
	assert.ElementsMatch(t, []string{"a", "b", "d"}, ids(got))
	for _, c := range got {
		assert.True(t, c.Status == domain.StatusNew || !c.NextReview.After(now))
	}
}

func TestSelectForStudyOrdering(t *testing.T) {
	cards := []domain.Card{
		card("r3", domain.StatusReview, -1*time.Hour),
		card("n1", domain.StatusNew, -5*time.Hour),
		card("r1", domain.StatusReview, -3*time.Hour),
		card("n2", domain.StatusNew, 5*time.Hour),
		card("r2a", domain.StatusLearning, -2*time.Hour),
		card("r2b", domain.StatusMastered, -2*time.Hour),
	}

	got := SelectForStudy(cards, DefaultLimit, now)
	assert.Equal(t, []string{"n1", "n2", "r1", "r2a", "r2b", "r3"}, ids(got))
}

func TestSelectForStudyLimit(t *testing.T) {
	var cards []domain.Card
	for i := 0; i < 30; i++ {
		cards = append(cards, card(fmt.Sprintf("c%02d", i), domain.StatusReview, -time.Duration(30-i)*time.Hour))
	}

	got := SelectForStudy(cards, DefaultLimit, now)
	require.Len(t, got, DefaultLimit)
	assert.Equal(t, "c00", got[0].ID)
	assert.Equal(t, "c19", got[DefaultLimit-1].ID)
}

func TestSelectForStudyEdgeCases(t *testing.T) {
	cards := []domain.Card{card("a", domain.StatusNew, 0)}

	testCases := []struct {
		name  string
		cards []domain.Card
		limit int
	}{
		{name: "zero limit", cards: cards, limit: 0},
		{name: "negative limit", cards: cards, limit: -5},
		{name: "no cards", cards: nil, limit: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectForStudy(tc.cards, tc.limit, now)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestSelectForStudyDoesNotMutateInput(t *testing.T) {
	cards := []domain.Card{
		card("late", domain.StatusReview, -time.Hour),
		card("early", domain.StatusReview, -2*time.Hour),
		card("new", domain.StatusNew, 0),
	}
	before := append([]domain.Card(nil), cards...)

	SelectForStudy(cards, 2, now)
	assert.Equal(t, before, cards)
}
