package cmd

import (
	"encoding/json"
	"fmt"

	"stir/pkg/check"
	"stir/pkg/config"
	"stir/pkg/log"
	"stir/pkg/runner"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	jsonOutput bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Runs a command script and checks every step's expectations",
	Long: `The check command loads a command script, runs each of its steps in order
and compares the captured output, exit code and error kind with what the step
expects. Every step runs even after a failure. The command fails if any step did.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cmd.Context().Value("logger").(log.Logger)

		script, err := config.LoadScript(cfgFile, logger)
		if err != nil {
			return err
		}

		r := cmdRunner
		if _, ok := r.(*runner.LiveCommandRunner); ok {
			r = &runner.LiveCommandRunner{Logger: logger, LogCommand: logCommand, Stderr: cmd.ErrOrStderr()}
		}

		results := check.Run(script, r, logger)
		passed, failed := check.Summarize(results)

		if jsonOutput {
			resultsForJSON := []stepResultForJSON{}
			for _, result := range results {
				resultsForJSON = append(resultsForJSON, stepResultForJSON{StepResult: result, Passed: result.Passed()})
			}
			jsonBytes, err := json.MarshalIndent(resultsForJSON, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		} else {
			for _, result := range results {
				verdict := "PASS"
				if !result.Passed() {
					verdict = "FAIL"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", verdict, result.Name, result.Command)
				for _, f := range result.Failures {
					fmt.Fprintf(cmd.OutOrStdout(), "   - %s: %s\n", f.Field, f.Message)
					if f.Diff != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "     diff: %q\n", f.Diff)
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed\n", passed, failed)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d steps failed", failed, passed+failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&cfgFile, "config", "./stir.yaml", "command script to check")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the results in JSON format")
}
