package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var backendFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &backendFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "axpress",
		Short:         "Browse domain papers and work through their learning mission",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Research backend base URL")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newDomainsCommand())
	rootCmd.AddCommand(newPapersCommand(ctx))
	rootCmd.AddCommand(newMissionCommand(ctx))

	return rootCmd
}
