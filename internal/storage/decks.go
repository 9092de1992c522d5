package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/conorfennell/smartdex/internal/domain"
)

var deckColumns = []string{
	"id", "title", "description", "tags", "source_id", "path", "created_at", "updated_at",
}

func scanDeck(s scanner) (domain.Deck, error) {
	var (
		d        domain.Deck
		tags     string
		sourceID sql.NullInt64
	)
	if err := s.Scan(&d.ID, &d.Title, &d.Description, &tags, &sourceID, &d.Path, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return domain.Deck{}, err
	}
	if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
		return domain.Deck{}, fmt.Errorf("failed to decode tags of deck %s: %w", d.ID, err)
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if sourceID.Valid {
		id := sourceID.Int64
		d.SourceID = &id
	}
	return d, nil
}

func deckArgs(d domain.Deck) ([]any, error) {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags of deck %s: %w", d.ID, err)
	}
	var sourceID sql.NullInt64
	if d.SourceID != nil {
		sourceID = sql.NullInt64{Int64: *d.SourceID, Valid: true}
	}
	return []any{d.ID, d.Title, d.Description, string(encoded), sourceID, d.Path, utc(d.CreatedAt), utc(d.UpdatedAt)}, nil
}

// InsertDeck stores a new deck.
func (db *DB) InsertDeck(ctx context.Context, d domain.Deck) error {
	args, err := deckArgs(d)
	if err != nil {
		return err
	}
	query, qargs, err := sq.Insert("decks").Columns(deckColumns...).Values(args...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build deck insert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, qargs...); err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("deck %s: %w", d.ID, domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert deck %s: %w", d.ID, err)
	}
	return nil
}

// UpsertDeck inserts a deck or refreshes the metadata of an existing one.
// The creation time of an existing deck is kept.
func (db *DB) UpsertDeck(ctx context.Context, d domain.Deck) error {
	args, err := deckArgs(d)
	if err != nil {
		return err
	}
	query, qargs, err := sq.Insert("decks").Columns(deckColumns...).Values(args...).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			tags = excluded.tags,
			source_id = excluded.source_id,
			path = excluded.path,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build deck upsert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, qargs...); err != nil {
		return fmt.Errorf("failed to upsert deck %s: %w", d.ID, err)
	}
	return nil
}

// FindDeck retrieves a deck by ID.
func (db *DB) FindDeck(ctx context.Context, id string) (domain.Deck, error) {
	query, args, err := sq.Select(deckColumns...).From("decks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to build deck query: %w", err)
	}
	d, err := scanDeck(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deck{}, fmt.Errorf("deck %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to find deck %s: %w", id, err)
	}
	return d, nil
}

// ListDecks returns all decks ordered by title.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	return db.listDecks(ctx, sq.Select(deckColumns...).From("decks").OrderBy("title", "id"))
}

// ListDecksBySource returns the decks synced from a source.
func (db *DB) ListDecksBySource(ctx context.Context, sourceID int64) ([]domain.Deck, error) {
	return db.listDecks(ctx, sq.Select(deckColumns...).From("decks").
		Where(sq.Eq{"source_id": sourceID}).OrderBy("path"))
}

func (db *DB) listDecks(ctx context.Context, b sq.SelectBuilder) ([]domain.Deck, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build deck query: %w", err)
	}
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []domain.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeleteDeck removes a deck and, through the foreign key, its cards.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	return checkAffected(res, "deck "+id)
}
