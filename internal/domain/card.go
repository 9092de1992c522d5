package domain

import "time"

// Status is a coarse classification of how well a card is known.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusReview   Status = "review"
	StatusMastered Status = "mastered"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReview, StatusMastered:
		return true
	}
	return false
}

const (
	InitialEaseFactor = 2.5

	// Repetition counts at which a reviewed card is promoted.
	ReviewRepetitions   = 2
	MasteredRepetitions = 5
)

// Card is a single flashcard together with its scheduling state.
type Card struct {
	ID     string `json:"id"`
	DeckID string `json:"deckId"`
	Front  string `json:"front"`
	Back   string `json:"back"`
	Hint   string `json:"hint,omitempty"`

	EaseFactor  float64    `json:"easeFactor"`
	Interval    int        `json:"interval"`
	Repetitions int        `json:"repetitions"`
	NextReview  time.Time  `json:"nextReview"`
	LastReview  *time.Time `json:"lastReview,omitempty"`
	Status      Status     `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCard returns a card in its initial scheduling state. The ID is left
// empty; callers assign it (see knol.Hash).
func NewCard(deckID, front, back, hint string, now time.Time) Card {
	return Card{
		DeckID:      deckID,
		Front:       front,
		Back:        back,
		Hint:        hint,
		EaseFactor:  InitialEaseFactor,
		Interval:    0,
		Repetitions: 0,
		NextReview:  now,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DeriveStatus maps a repetition count onto a status. It is applied after
// every scheduled review, so a reviewed card is never StatusNew again.
func DeriveStatus(repetitions int) Status {
	switch {
	case repetitions >= MasteredRepetitions:
		return StatusMastered
	case repetitions >= ReviewRepetitions:
		return StatusReview
	default:
		return StatusLearning
	}
}

// IsDue reports whether the card belongs in a study queue at now.
func (c Card) IsDue(now time.Time) bool {
	return c.Status == StatusNew || !c.NextReview.After(now)
}
