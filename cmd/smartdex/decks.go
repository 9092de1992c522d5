package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/smartdex/internal/study"
)

func newDeckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect decks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List decks with card counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			decks, err := a.svc.Decks(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCARDS\tDUE\tNEW\tLEARNING\tREVIEW\tMASTERED\tEASE\tLAST STUDIED")
			for _, d := range decks {
				last := "never"
				if d.LastStudied != nil {
					last = d.LastStudied.Local().Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%s\n",
					d.ID, d.Title, d.CardCount, d.DueCount,
					d.NewCount, d.LearningCount, d.ReviewCount, d.MasteredCount, d.AverageEaseFactor, last)
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		days    int
		deckRef string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study progress for recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID := ""
			if deckRef != "" {
				deck, err := a.resolveDeck(cmd.Context(), deckRef)
				if err != nil {
					return err
				}
				deckID = deck.ID
			}
			stats, err := a.svc.Stats(cmd.Context(), deckID, days, time.Local)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			c := stats.Cards
			fmt.Fprintf(out, "Cards: %d new, %d learning, %d review, %d mastered (average ease %.2f)\n\n",
				c.NewCount, c.LearningCount, c.ReviewCount, c.MasteredCount, c.AverageEaseFactor)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSTUDIED\tLEARNED\tMASTERED\tACCURACY")
			for _, d := range stats.Days {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d%%\n", d.Date, d.CardsStudied, d.CardsLearned, d.CardsMastered, d.Accuracy)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nReviews: %d  Accuracy: %d%%  Streak: %d days\n", stats.TotalReviews, stats.Accuracy, stats.Streak)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", study.DefaultStatsDays, "number of days to show")
	cmd.Flags().StringVar(&deckRef, "deck", "", "deck ID or title; all decks when empty")
	return cmd
}
