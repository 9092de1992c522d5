package domain

import (
	"math"
	"time"
)

// Deck groups cards. Decks synced from a source carry its ID and the path of
// the Markdown file they were read from.
type Deck struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	SourceID    *int64    `json:"sourceId,omitempty"`
	Path        string    `json:"path,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StatusBreakdown counts cards per status alongside their average ease
// factor, rounded to two decimals.
type StatusBreakdown struct {
	NewCount          int     `json:"newCount"`
	LearningCount     int     `json:"learningCount"`
	ReviewCount       int     `json:"reviewCount"`
	MasteredCount     int     `json:"masteredCount"`
	AverageEaseFactor float64 `json:"averageEaseFactor"`
}

// Breakdown tallies cards by status. The average ease factor is 0 for no cards.
func Breakdown(cards []Card) StatusBreakdown {
	var b StatusBreakdown
	var ease float64
	for _, c := range cards {
		switch c.Status {
		case StatusNew:
			b.NewCount++
		case StatusLearning:
			b.LearningCount++
		case StatusReview:
			b.ReviewCount++
		case StatusMastered:
			b.MasteredCount++
		}
		ease += c.EaseFactor
	}
	if len(cards) > 0 {
		b.AverageEaseFactor = math.Round(ease/float64(len(cards))*100) / 100
	}
	return b
}

// DeckSummary is a deck with counts derived from its cards.
type DeckSummary struct {
	Deck
	StatusBreakdown
	CardCount   int        `json:"cardCount"`
	DueCount    int        `json:"dueCount"`
	LastStudied *time.Time `json:"lastStudied,omitempty"`
}

// Summarize computes a DeckSummary from the deck's cards.
func Summarize(deck Deck, cards []Card, now time.Time) DeckSummary {
	s := DeckSummary{Deck: deck, StatusBreakdown: Breakdown(cards), CardCount: len(cards)}
	for _, c := range cards {
		if c.IsDue(now) {
			s.DueCount++
		}
		if c.LastReview != nil && (s.LastStudied == nil || c.LastReview.After(*s.LastStudied)) {
			t := *c.LastReview
			s.LastStudied = &t
		}
	}
	return s
}
