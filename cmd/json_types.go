package cmd

import "stir/pkg/check"

// stepResultForJSON is a struct used for marshaling a step result to JSON for machine-readable output.
type stepResultForJSON struct {
	check.StepResult
	Passed bool `json:"passed"`
}
