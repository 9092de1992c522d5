package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/smartdex/internal/config"
	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/logging"
	"github.com/conorfennell/smartdex/internal/storage"
	"github.com/conorfennell/smartdex/internal/study"
)

// app holds what a command needs once the config is loaded.
type app struct {
	cfg *config.Config
	db  *storage.DB
	svc *study.Service
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "smartdex",
		Short:        "Spaced repetition flashcards",
		Long:         "smartdex schedules flashcard reviews with SM-2, runs study sessions and quizzes, and syncs decks from Markdown sources.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(a),
		newSyncCmd(a),
		newSourceCmd(a),
		newDeckCmd(a),
		newStudyCmd(a),
		newQuizCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if _, err := logging.Setup(cfg.Log, cmd.ErrOrStderr()); err != nil {
		return err
	}
	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.db = db
	a.svc = study.NewService(db)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// resolveDeck finds a deck by ID or, failing that, by case-insensitive title.
func (a *app) resolveDeck(ctx context.Context, ref string) (domain.DeckSummary, error) {
	if d, err := a.svc.Deck(ctx, ref); err == nil {
		return d, nil
	}
	decks, err := a.svc.Decks(ctx)
	if err != nil {
		return domain.DeckSummary{}, err
	}
	var matches []domain.DeckSummary
	for _, d := range decks {
		if strings.EqualFold(d.Title, ref) {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 0:
		return domain.DeckSummary{}, fmt.Errorf("deck %q: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return domain.DeckSummary{}, fmt.Errorf("%w: %d decks are titled %q, use the deck ID", domain.ErrInvalid, len(matches), ref)
}
