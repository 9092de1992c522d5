package domain

import (
	"math"
	"time"
)

// CorrectQuality is the lowest quality counted as a correct answer in session
// statistics. It is deliberately separate from the scheduler's pass threshold
// and from the status thresholds.
const CorrectQuality = 3

// IsCorrect reports whether a review quality counts as correct for a session.
func IsCorrect(quality int) bool {
	return quality >= CorrectQuality
}

// ReviewLog records a single review event for a card.
// Quality is the 0-5 self rating:
// 0-2: failed recall
// 3: correct with serious difficulty
// 4: correct after hesitation
// 5: perfect recall
type ReviewLog struct {
	ID             string    `json:"id"`
	CardID         string    `json:"cardId"`
	DeckID         string    `json:"deckId"`
	Quality        int       `json:"quality"`
	PreviousStatus Status    `json:"previousStatus"`
	Status         Status    `json:"status"`
	EaseFactor     float64   `json:"easeFactor"`
	Interval       int       `json:"interval"`
	Repetitions    int       `json:"repetitions"`
	ReviewedAt     time.Time `json:"reviewedAt"`
}

// SessionStats tallies answers within one study session.
type SessionStats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
}

// Record adds one answered card to the tally.
func (s *SessionStats) Record(quality int) {
	s.Total++
	if IsCorrect(quality) {
		s.Correct++
	} else {
		s.Incorrect++
	}
}

// Accuracy is the rounded percentage of correct answers, 0 for an empty session.
func (s SessionStats) Accuracy() int {
	return Percent(s.Correct, s.Total)
}

// Percent returns n as a rounded percentage of total, 0 when total is 0.
func Percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// QuizResult records a finished quiz.
type QuizResult struct {
	ID            string    `json:"id"`
	DeckID        string    `json:"deckId"`
	Mode          string    `json:"mode"`
	QuestionCount int       `json:"questionCount"`
	Correct       int       `json:"correct"`
	CompletedAt   time.Time `json:"completedAt"`
}

// DailyProgress aggregates one calendar day of reviews.
type DailyProgress struct {
	Date          string `json:"date"`
	CardsStudied  int    `json:"cardsStudied"`
	CardsLearned  int    `json:"cardsLearned"`
	CardsMastered int    `json:"cardsMastered"`
	Accuracy      int    `json:"accuracy"`
}
