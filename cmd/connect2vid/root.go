package main

import (
	"errors"

	"github.com/spf13/cobra"

	"connect2vid/internal/pipeline"
	"connect2vid/internal/reference"
	"connect2vid/internal/textutil"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var outputFolder string
	var outputFilename string

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "connect2vid [recording-url | recording-id | archive.zip]",
		Short: "Convert an Adobe Connect recording into a single FLV video",
		Long: "connect2vid downloads an Adobe Connect recording archive, muxes each camera/voice\n" +
			"track with its screenshare track and concatenates the parts into one file.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The root command loads configuration itself once it knows a
			// reference was given, so bare invocations always print help.
			if cmd.Parent() == nil || shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ref, err := reference.NewResolver(cfg.Connect.HostDomain).Resolve(args)
			if errors.Is(err, reference.ErrNoReference) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}
			return runConversion(cmd, ctx, pipeline.Request{
				Reference:  ref,
				OutputDir:  outputFolder,
				OutputName: outputFilename,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&outputFolder, "output_folder", pipeline.DefaultOutputDir, "Folder receiving the parts, the manifest and the final video")
	rootCmd.Flags().StringVar(&outputFilename, "output_filename", textutil.DefaultTitle, "Base name of the output video (letters, digits and underscores are kept)")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
