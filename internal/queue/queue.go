// Package queue builds study queues out of new and due cards.
package queue

import (
	"slices"
	"time"

	"github.com/conorfennell/smartdex/internal/domain"
)

// DefaultLimit is the queue size used when the caller does not pick one.
const DefaultLimit = 20

// SelectForStudy returns at most limit cards that are new or due at now.
// New cards come first, the rest follow soonest-due first. Ties keep their
// input order. The input slice is not modified.
func SelectForStudy(cards []domain.Card, limit int, now time.Time) []domain.Card {
	if limit <= 0 {
		return []domain.Card{}
	}

	selected := make([]domain.Card, 0, min(limit, len(cards)))
	for _, c := range cards {
		if c.IsDue(now) {
			selected = append(selected, c)
		}
	}

	slices.SortStableFunc(selected, func(a, b domain.Card) int {
		aNew, bNew := a.Status == domain.StatusNew, b.Status == domain.StatusNew
		switch {
		case aNew && bNew:
			return 0
		case aNew:
			return -1
		case bNew:
			return 1
		}
		return a.NextReview.Compare(b.NextReview)
	})

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
