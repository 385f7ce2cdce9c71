package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"connect2vid/internal/deps"
	"connect2vid/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that the external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cfg)

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(!status.Optional),
					dependencyState(status),
					status.Description,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{left("Tool"), left("Command"), left("Required"), left("Status"), left("Purpose")},
				rows,
			))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintln(out, renderStatusLine("Tools", statusError, fmt.Sprintf("%d required tool(s) missing", len(missing)), shouldColorize(out)))
				return errors.New("required tools missing")
			}
			fmt.Fprintln(out, renderStatusLine("Tools", statusOK, "all required tools found", shouldColorize(out)))
			return nil
		},
	}
}

func dependencyState(status deps.Status) string {
	if status.Available {
		return "found " + status.Path
	}
	return status.Detail
}
