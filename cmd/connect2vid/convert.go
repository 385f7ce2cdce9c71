package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"connect2vid/internal/ffprobe"
	"connect2vid/internal/pipeline"
	"connect2vid/internal/runner"
)

func runConversion(cmd *cobra.Command, ctx *commandContext, req pipeline.Request) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd, cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	runCtx := cmd.Context()
	store := ctx.openHistory(runCtx, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	exec := runner.New(
		runner.WithStdout(cmd.OutOrStdout()),
		runner.WithStderr(cmd.ErrOrStderr()),
		runner.WithLogger(logger),
	)
	p, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		Executor: exec,
		Logger:   logger,
		History:  store,
	})
	if err != nil {
		return err
	}

	report, err := p.Run(runCtx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, renderSummary(runCtx, report, ffprobe.New(cfg.Tools.FFprobe), shouldColorize(out)))
	return nil
}
