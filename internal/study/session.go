package study

import (
	"context"
	"errors"

	"github.com/conorfennell/smartdex/internal/domain"
)

// ErrSessionDone is returned by Answer once every card has been answered.
var ErrSessionDone = errors.New("study session has no cards left")

// Session walks through a study queue one card at a time.
type Session struct {
	svc   *Service
	cards []domain.Card
	pos   int

	Stats domain.SessionStats
}

// StartSession builds the queue for deckID and starts a session over it.
func (s *Service) StartSession(ctx context.Context, deckID string, limit int) (*Session, error) {
	cards, err := s.Queue(ctx, deckID, limit)
	if err != nil {
		return nil, err
	}
	return &Session{svc: s, cards: cards}, nil
}

// Current returns the card awaiting an answer.
func (ss *Session) Current() (domain.Card, bool) {
	if ss.pos >= len(ss.cards) {
		return domain.Card{}, false
	}
	return ss.cards[ss.pos], true
}

// Remaining is the number of cards not yet answered.
func (ss *Session) Remaining() int {
	return len(ss.cards) - ss.pos
}

// Answer rates the current card and moves on to the next one.
func (ss *Session) Answer(ctx context.Context, quality int) (ReviewOutcome, error) {
	card, ok := ss.Current()
	if !ok {
		return ReviewOutcome{}, ErrSessionDone
	}
	out, err := ss.svc.Review(ctx, card.ID, quality)
	if err != nil {
		return ReviewOutcome{}, err
	}
	ss.pos++
	ss.Stats.Record(out.Log.Quality)
	return out, nil
}
