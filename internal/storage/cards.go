package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/conorfennell/smartdex/internal/domain"
)

var cardColumns = []string{
	"id", "deck_id", "front", "back", "hint",
	"ease_factor", "interval_days", "repetitions", "next_review", "last_review", "status",
	"created_at", "updated_at",
}

func scanCard(s scanner) (domain.Card, error) {
	var (
		c          domain.Card
		lastReview sql.NullTime
		status     string
	)
	err := s.Scan(
		&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Hint,
		&c.EaseFactor, &c.Interval, &c.Repetitions, &c.NextReview, &lastReview, &status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	c.LastReview = timePtr(lastReview)
	c.Status = domain.Status(status)
	return c, nil
}

// CardFilter narrows ListCards. Zero fields match everything.
type CardFilter struct {
	DeckID string
	Status domain.Status
}

func (f CardFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.DeckID != "" {
		b = b.Where(sq.Eq{"deck_id": f.DeckID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	return b
}

// InsertCard stores a new card with its scheduling state.
func (db *DB) InsertCard(ctx context.Context, c domain.Card) error {
	query, args, err := sq.Insert("cards").Columns(cardColumns...).Values(
		c.ID, c.DeckID, c.Front, c.Back, c.Hint,
		c.EaseFactor, c.Interval, c.Repetitions, utc(c.NextReview), nullTime(c.LastReview), string(c.Status),
		utc(c.CreatedAt), utc(c.UpdatedAt),
	).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build card insert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("card %s: %w", c.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
	}
	return nil
}

// FindCard retrieves a card by ID.
func (db *DB) FindCard(ctx context.Context, id string) (domain.Card, error) {
	return findCard(ctx, db.conn, id)
}

func findCard(ctx context.Context, q queryer, id string) (domain.Card, error) {
	query, args, err := sq.Select(cardColumns...).From("cards").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to build card query: %w", err)
	}
	c, err := scanCard(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return c, nil
}

// ListCards returns the cards matching f in creation order.
func (db *DB) ListCards(ctx context.Context, f CardFilter) ([]domain.Card, error) {
	b := f.apply(sq.Select(cardColumns...).From("cards")).OrderBy("created_at", "rowid")
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateCardContent replaces the hint of a card. Front and back are part of
// the card's identity and never change in place.
func (db *DB) UpdateCardContent(ctx context.Context, c domain.Card) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET hint = ?, updated_at = ?
		WHERE id = ?
	`, c.Hint, utc(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", c.ID, err)
	}
	return checkAffected(res, "card "+c.ID)
}

// DeleteCard removes a card by ID.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return checkAffected(res, "card "+id)
}
