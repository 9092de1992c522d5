package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/conorfennell/smartdex/internal/domain"
)

// ReviewFunc computes the new state of a card and the log entry describing
// the review. It must not block.
type ReviewFunc func(current domain.Card) (domain.Card, domain.ReviewLog)

// ReviewCard reads a card, applies review and writes both the updated card
// and the review log in one transaction, so a concurrent review of the same
// card sees either the state before or after this one, never a mix.
func (db *DB) ReviewCard(ctx context.Context, id string, review ReviewFunc) (domain.Card, error) {
	var updated domain.Card
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := findCard(ctx, tx, id)
		if err != nil {
			return err
		}

		next, log := review(current)
		next.ID, next.DeckID = current.ID, current.DeckID

		res, err := tx.ExecContext(ctx, `
			UPDATE cards
			SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review = ?,
			    last_review = ?, status = ?, updated_at = ?
			WHERE id = ?
		`,
			next.EaseFactor,
			next.Interval,
			next.Repetitions,
			utc(next.NextReview),
			nullTime(next.LastReview),
			string(next.Status),
			utc(next.UpdatedAt),
			next.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update card state for %s: %w", id, err)
		}
		if err := checkAffected(res, "card "+id); err != nil {
			return err
		}

		if err := insertReviewLog(ctx, tx, log); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}
	return updated, nil
}

var reviewLogColumns = []string{
	"id", "card_id", "deck_id", "quality", "previous_status", "status",
	"ease_factor", "interval_days", "repetitions", "reviewed_at",
}

func insertReviewLog(ctx context.Context, q queryer, l domain.ReviewLog) error {
	query, args, err := sq.Insert("review_logs").Columns(reviewLogColumns...).Values(
		l.ID, l.CardID, l.DeckID, l.Quality, string(l.PreviousStatus), string(l.Status),
		l.EaseFactor, l.Interval, l.Repetitions, utc(l.ReviewedAt),
	).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review log insert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert review log for card %s: %w", l.CardID, err)
	}
	return nil
}

// ReviewFilter narrows ListReviewLogs. Zero fields match everything.
type ReviewFilter struct {
	DeckID string
	CardID string
}

// ListReviewLogs returns review logs, oldest first.
func (db *DB) ListReviewLogs(ctx context.Context, f ReviewFilter) ([]domain.ReviewLog, error) {
	b := sq.Select(reviewLogColumns...).From("review_logs").OrderBy("rowid")
	if f.DeckID != "" {
		b = b.Where(sq.Eq{"deck_id": f.DeckID})
	}
	if f.CardID != "" {
		b = b.Where(sq.Eq{"card_id": f.CardID})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review log query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list review logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ReviewLog{}
	for rows.Next() {
		var (
			l            domain.ReviewLog
			prev, status string
		)
		if err := rows.Scan(
			&l.ID, &l.CardID, &l.DeckID, &l.Quality, &prev, &status,
			&l.EaseFactor, &l.Interval, &l.Repetitions, &l.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		l.PreviousStatus, l.Status = domain.Status(prev), domain.Status(status)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

var quizResultColumns = []string{"id", "deck_id", "mode", "question_count", "correct", "completed_at"}

// InsertQuizResult records a finished quiz.
func (db *DB) InsertQuizResult(ctx context.Context, r domain.QuizResult) error {
	query, args, err := sq.Insert("quiz_results").Columns(quizResultColumns...).Values(
		r.ID, r.DeckID, r.Mode, r.QuestionCount, r.Correct, utc(r.CompletedAt),
	).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build quiz result insert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert quiz result %s: %w", r.ID, err)
	}
	return nil
}

// ListQuizResults returns the most recent quiz results first, at most limit
// of them when limit is positive.
func (db *DB) ListQuizResults(ctx context.Context, deckID string, limit int) ([]domain.QuizResult, error) {
	b := sq.Select(quizResultColumns...).From("quiz_results").OrderBy("rowid DESC")
	if deckID != "" {
		b = b.Where(sq.Eq{"deck_id": deckID})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz result query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	defer rows.Close()

	results := []domain.QuizResult{}
	for rows.Next() {
		var r domain.QuizResult
		if err := rows.Scan(&r.ID, &r.DeckID, &r.Mode, &r.QuestionCount, &r.Correct, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
