package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"connect2vid/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					humanize.Time(run.StartedAt),
					run.SessionID,
					string(run.Status),
					strconv.Itoa(run.Segments),
					runDuration(run),
					run.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{left("Started"), left("Session"), left("Status"), right("Parts"), right("Took"), left("Output")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Maximum number of runs to show (0 for all)")
	return cmd
}

func runDuration(run history.Run) string {
	if d := run.Duration(); d > 0 {
		return d.Round(time.Second).String()
	}
	return "-"
}
