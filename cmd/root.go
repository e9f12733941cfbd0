package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"stir/pkg/log"
	"stir/pkg/runner"
	"stir/pkg/stir"

	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logCommand bool
	logger     log.Logger
	cmdRunner  runner.CommandRunner = &runner.LiveCommandRunner{}
	rootCmd                         = &cobra.Command{
		Use:   "stir",
		Short: "stir runs child processes and reports how they went",
		Long: `A tool for running child processes with captured output and precise
failure reporting, and for checking scripted commands against their expected
output and exit codes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			writer := cmd.ErrOrStderr()
			logger = log.NewSlogLogger(level, writer)
			ctx := context.WithValue(cmd.Context(), "logger", logger)
			cmd.SetContext(ctx)
			return nil
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode passes a child's exit code through, so that `stir run` can stand
// in for the command it runs.
func exitCode(err error) int {
	var cmdErr *stir.Error
	if errors.As(err, &cmdErr) && cmdErr.Kind == stir.KindNonZeroExit && cmdErr.Code > 0 {
		return cmdErr.Code
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logCommand, "log-command", false, "Print each command to stderr before running it")
}
