package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"stir/pkg/log"
	"stir/pkg/stir"

	"github.com/spf13/cobra"
)

var (
	runStderr bool
	runStatus bool
	runTrim   bool
	runDir    string
	runEnv    []string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] [--] program [args...]",
	Short: "Runs a command and prints its captured output",
	Long: `The run command runs a program with the given arguments and prints its
captured stdout. With --stderr it prints the captured stderr instead, and with
--status it relays both streams and prints how the program exited.
A program that exits with a non-zero code makes stir exit with the same code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cmd.Context().Value("logger").(log.Logger)

		if runStderr && runStatus {
			return errors.New("--stderr and --status cannot be used together")
		}
		for _, kv := range runEnv {
			if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
				return fmt.Errorf("invalid --env value %q: expected KEY=VALUE", kv)
			}
		}

		r := &stir.Runner{
			Dir:        runDir,
			Env:        runEnv,
			Stdin:      cmd.InOrStdin(),
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
			LogCommand: logCommand,
			Logger:     logger,
		}
		command := stir.New(args[0], args[1:]...)

		switch {
		case runStatus:
			status, err := r.Status(command)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
		case runStderr:
			out, err := r.StderrOutput(command)
			if err != nil {
				return err
			}
			printCaptured(cmd.OutOrStdout(), out)
		default:
			out, err := r.Output(command)
			if err != nil {
				return err
			}
			printCaptured(cmd.OutOrStdout(), out)
		}

		return nil
	},
}

func printCaptured(w io.Writer, out string) {
	if runTrim {
		fmt.Fprintln(w, strings.TrimSpace(out))
		return
	}
	fmt.Fprint(w, out)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().BoolVar(&runStderr, "stderr", false, "Print captured stderr instead of stdout")
	runCmd.Flags().BoolVar(&runStatus, "status", false, "Relay both streams and print the exit status")
	runCmd.Flags().BoolVar(&runTrim, "trim", false, "Trim surrounding whitespace from the printed output")
	runCmd.Flags().StringVar(&runDir, "dir", "", "Working directory for the command")
	runCmd.Flags().StringArrayVar(&runEnv, "env", nil, "Extra environment variable as KEY=VALUE (repeatable)")
}
