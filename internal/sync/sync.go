// Package sync reconciles deck sources with the database. Every Markdown file
// of a source becomes a deck; cards are matched by content hash so editing a
// hint keeps scheduling state while editing a question or answer starts a new
// card.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/gitsource"
	"github.com/conorfennell/smartdex/internal/knol"
	"github.com/conorfennell/smartdex/internal/parser"
	"github.com/conorfennell/smartdex/internal/storage"
)

// Options configures a sync run.
type Options struct {
	// ReposDir holds the checkouts of git sources.
	ReposDir string
	// Progress receives git transfer progress. May be nil.
	Progress io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Report summarizes the reconciliation of one source.
type Report struct {
	SourceID     int64    `json:"sourceId"`
	Path         string   `json:"path"`
	Decks        int      `json:"decks"`
	Inserted     int      `json:"inserted"`
	Updated      int      `json:"updated"`
	Deleted      int      `json:"deleted"`
	DecksDeleted int      `json:"decksDeleted"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *Report) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// RunSync iterates over all sources and reconciles them. Problems with a
// single source or file are collected in its report; only failures to read
// the source list are returned as an error.
func RunSync(ctx context.Context, db *storage.DB, opts Options) ([]Report, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	slog.Info("Starting sync process for all sources...")
	sources, err := db.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}

	reports := make([]Report, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, SyncSource(ctx, db, source, opts))
	}
	slog.Info("Sync process complete.", "sources", len(sources))
	return reports, nil
}

// SyncSource reconciles a single source.
func SyncSource(ctx context.Context, db *storage.DB, source storage.Source, opts Options) Report {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	report := Report{SourceID: source.ID, Path: source.Path}
	slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

	root := source.Path
	if source.Type == storage.SourceGit {
		if opts.ReposDir == "" {
			report.addError(errors.New("no directory configured for git checkouts"))
			return report
		}
		localRepoPath, err := gitsource.LocalPath(opts.ReposDir, source.Path)
		if err != nil {
			slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
			report.addError(err)
			return report
		}
		if err := os.MkdirAll(filepath.Dir(localRepoPath), os.ModePerm); err != nil {
			report.addError(fmt.Errorf("failed to create repos directory: %w", err))
			return report
		}
		if err := gitsource.Sync(ctx, source.Path, localRepoPath, opts.Progress); err != nil {
			slog.Error("Error syncing git repo", "url", source.Path, "error", err)
			report.addError(err)
			return report
		}
		root = localRepoPath
	}

	reconcile(ctx, db, source, root, opts.Now(), &report)

	slog.Info("reconciliation complete",
		"path", source.Path,
		"decks", report.Decks,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"orphaned_deleted", report.Deleted,
		"errors", len(report.Errors),
	)
	return report
}

// CheckSource rejects git sources that cannot be checked out under reposDir.
// Local directories are accepted as they are.
func CheckSource(reposDir, path string) error {
	if storage.SourceType(path) != storage.SourceGit {
		return nil
	}
	if _, err := gitsource.LocalPath(reposDir, path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	return nil
}

// DeckID derives the stable ID of the deck read from relPath within a source.
func DeckID(sourcePath, relPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourcePath+"\x00"+filepath.ToSlash(relPath))).String()
}

func reconcile(ctx context.Context, db *storage.DB, source storage.Source, root string, now time.Time, report *Report) {
	seenDecks := make(map[string]bool)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		deckID := DeckID(source.Path, rel)
		// A deck whose file cannot be read is kept as it is.
		seenDecks[deckID] = true

		doc, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			report.addError(fmt.Errorf("parsing %s: %w", rel, parseErr))
			return nil
		}
		if err := reconcileDeck(ctx, db, source, deckID, rel, doc, now, report); err != nil {
			report.addError(fmt.Errorf("syncing %s: %w", rel, err))
		}
		return nil
	})
	if walkErr != nil {
		slog.Error("Error walking directory", "path", root, "error", walkErr)
		report.addError(fmt.Errorf("walking %s: %w", root, walkErr))
		return
	}

	decks, err := db.ListDecksBySource(ctx, source.ID)
	if err != nil {
		report.addError(err)
		return
	}
	for _, deck := range decks {
		if seenDecks[deck.ID] {
			continue
		}
		slog.Info("Orphaned deck, deleting", "deck_id", deck.ID, "path", deck.Path)
		if err := db.DeleteDeck(ctx, deck.ID); err != nil {
			slog.Warn("Failed to delete orphaned deck", "deck_id", deck.ID, "error", err)
			report.addError(err)
			continue
		}
		report.DecksDeleted++
	}

	if err := db.UpdateSourceLastScanned(ctx, source.ID, now); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
		report.addError(err)
	}
}

func reconcileDeck(ctx context.Context, db *storage.DB, source storage.Source, deckID, rel string, doc *parser.Document, now time.Time, report *Report) error {
	title := doc.Meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}
	sourceID := source.ID
	err := db.UpsertDeck(ctx, domain.Deck{
		ID:          deckID,
		Title:       title,
		Description: doc.Meta.Description,
		Tags:        doc.Meta.Tags,
		SourceID:    &sourceID,
		Path:        filepath.ToSlash(rel),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}
	report.Decks++

	existing, err := db.ListCards(ctx, storage.CardFilter{DeckID: deckID})
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Card, len(existing))
	for _, c := range existing {
		byID[c.ID] = c
	}

	found := make(map[string]bool, len(doc.Cards))
	for _, parsed := range doc.Cards {
		if strings.TrimSpace(parsed.Back) == "" {
			report.addError(fmt.Errorf("%s: card %q has no answer", rel, parsed.Front))
			continue
		}
		id := knol.Hash(deckID, parsed.Front, parsed.Back)
		if found[id] {
			slog.Warn("Skipping duplicate card", "file", rel, "front", parsed.Front)
			continue
		}
		found[id] = true

		if current, ok := byID[id]; ok {
			if current.Hint != parsed.Hint {
				current.Hint = parsed.Hint
				current.UpdatedAt = now
				if err := db.UpdateCardContent(ctx, current); err != nil {
					report.addError(err)
					continue
				}
				report.Updated++
			}
			continue
		}

		slog.Debug("New card found, inserting...", "card_id", id)
		card := domain.NewCard(deckID, parsed.Front, parsed.Back, parsed.Hint, now)
		card.ID = id
		if err := db.InsertCard(ctx, card); err != nil {
			report.addError(err)
			continue
		}
		report.Inserted++
	}

	for _, c := range existing {
		if found[c.ID] {
			continue
		}
		slog.Debug("Orphaned card, deleting", "card_id", c.ID)
		if err := db.DeleteCard(ctx, c.ID); err != nil {
			slog.Warn("Failed to delete orphaned card", "card_id", c.ID, "error", err)
			report.addError(err)
			continue
		}
		report.Deleted++
	}
	return nil
}
