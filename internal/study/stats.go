package study

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/storage"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 365
)

const dayLayout = "2006-01-02"

// Stats is the study history over a window of days together with the
// current state of the cards.
type Stats struct {
	Cards        domain.StatusBreakdown `json:"cards"`
	Days         []domain.DailyProgress `json:"days"`
	Streak       int                    `json:"streak"`
	TotalReviews int                    `json:"totalReviews"`
	Accuracy     int                    `json:"accuracy"`
}

// Stats aggregates review logs into daily progress for the last days days,
// oldest first, with calendar days taken in loc. The streak counts
// consecutive days with at least one review ending today, or yesterday when
// nothing has been studied yet today. An empty deckID covers all decks.
func (s *Service) Stats(ctx context.Context, deckID string, days int, loc *time.Location) (Stats, error) {
	if days < 1 || days > MaxStatsDays {
		return Stats{}, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrInvalid, MaxStatsDays)
	}
	if loc == nil {
		loc = time.Local
	}

	if deckID != "" {
		if _, err := s.store.FindDeck(ctx, deckID); err != nil {
			return Stats{}, err
		}
	}
	cards, err := s.store.ListCards(ctx, storage.CardFilter{DeckID: deckID})
	if err != nil {
		return Stats{}, err
	}
	logs, err := s.store.ListReviewLogs(ctx, storage.ReviewFilter{DeckID: deckID})
	if err != nil {
		return Stats{}, err
	}

	today := startOfDay(s.now(), loc)
	first := today.AddDate(0, 0, -(days - 1))

	type tally struct {
		studied  map[string]bool
		learned  map[string]bool
		mastered map[string]bool
		correct  int
		total    int
	}
	buckets := make(map[string]*tally)
	active := make(map[string]bool)

	stats := Stats{Cards: domain.Breakdown(cards)}
	var correct int
	for _, l := range logs {
		at := l.ReviewedAt.In(loc)
		key := at.Format(dayLayout)
		active[key] = true
		if at.Before(first) {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &tally{studied: map[string]bool{}, learned: map[string]bool{}, mastered: map[string]bool{}}
			buckets[key] = b
		}
		b.studied[l.CardID] = true
		if l.PreviousStatus == domain.StatusNew {
			b.learned[l.CardID] = true
		}
		if l.Status == domain.StatusMastered && l.PreviousStatus != domain.StatusMastered {
			b.mastered[l.CardID] = true
		}
		b.total++
		stats.TotalReviews++
		if domain.IsCorrect(l.Quality) {
			b.correct++
			correct++
		}
	}

	stats.Days = make([]domain.DailyProgress, 0, days)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		p := domain.DailyProgress{Date: key}
		if b, ok := buckets[key]; ok {
			p.CardsStudied = len(b.studied)
			p.CardsLearned = len(b.learned)
			p.CardsMastered = len(b.mastered)
			p.Accuracy = domain.Percent(b.correct, b.total)
		}
		stats.Days = append(stats.Days, p)
	}
	stats.Accuracy = domain.Percent(correct, stats.TotalReviews)
	stats.Streak = streak(active, today)
	return stats, nil
}

func streak(active map[string]bool, today time.Time) int {
	d := today
	if !active[d.Format(dayLayout)] {
		d = d.AddDate(0, 0, -1)
	}
	n := 0
	for active[d.Format(dayLayout)] {
		n++
		d = d.AddDate(0, 0, -1)
	}
	return n
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
