package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conorfennell/smartdex/internal/storage"
	"github.com/conorfennell/smartdex/internal/sync"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync decks from all sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := sync.RunSync(cmd.Context(), a.db, sync.Options{
				ReposDir: a.cfg.Sources.ReposDir,
				Progress: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(out, "No sources configured. Add one with: smartdex source add <path/or/url.git>")
				return nil
			}
			var failed int
			for _, r := range reports {
				fmt.Fprintf(out, "%s: %d decks, %d new, %d updated, %d removed, %d decks removed\n",
					r.Path, r.Decks, r.Inserted, r.Updated, r.Deleted, r.DecksDeleted)
				for _, e := range r.Errors {
					fmt.Fprintf(out, "  error: %s\n", e)
				}
				failed += len(r.Errors)
			}
			if failed > 0 {
				return fmt.Errorf("sync finished with %d errors", failed)
			}
			return nil
		},
	}
}

func newSourceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage deck sources",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <path/or/url.git>",
		Short: "Add a local directory or git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if err := sync.CheckSource(a.cfg.Sources.ReposDir, path); err != nil {
				return err
			}
			sourceType := storage.SourceType(path)
			id, err := a.db.InsertSource(cmd.Context(), path, sourceType)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s source %d: %s\n", sourceType, id, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := a.db.ListSources(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tPATH\tLAST SCANNED")
			for _, s := range sources {
				scanned := "never"
				if s.LastScanned != nil {
					scanned = s.LastScanned.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.Type, s.Path, scanned)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a source and the decks synced from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source ID %q", args[0])
			}
			if err := a.db.DeleteSource(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed source %d\n", id)
			return nil
		},
	})

	return cmd
}
