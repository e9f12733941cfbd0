package model

import (
	"fmt"
	"sort"
	"strings"

	"stir/pkg/stir"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("script validation failed:\n")
	for _, e := range es {
		sb.WriteString(fmt.Sprintf("  - %s\n", e.Error()))
	}
	return sb.String()
}

// Script is a list of commands to run, each with the result it is expected
// to produce.
type Script struct {
	Includes []string          `yaml:"includes,omitempty"` // Script files to run before this one's steps
	Env      map[string]string `yaml:"env,omitempty"`      // Applied to every step
	Steps    []Step            `yaml:"steps"`
}

type Step struct {
	Name    string            `yaml:"name"`
	Command []string          `yaml:"command"`
	Dir     string            `yaml:"dir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"` // Overrides Script.Env
	Stdin   string            `yaml:"stdin,omitempty"`
	Expect  Expectation       `yaml:"expect"`
}

// Expectation is what a step must produce. Nil Stdout or Stderr means the
// stream is not checked.
type Expectation struct {
	Stdout   *string `yaml:"stdout,omitempty"`
	Stderr   *string `yaml:"stderr,omitempty"`
	ExitCode int     `yaml:"exit-code,omitempty"`
	Error    string  `yaml:"error,omitempty"` // not-found, spawn or invalid-utf8
	Trim     bool    `yaml:"trim,omitempty"`  // Compare with surrounding whitespace removed
}

// ToCommand returns the step's command line as a stir.Command.
func (s Step) ToCommand() stir.Command {
	if len(s.Command) == 0 {
		return stir.Command{}
	}
	return stir.New(s.Command[0], s.Command[1:]...)
}

// StepEnv overlays step.Env on the script env and renders the result as
// sorted KEY=VALUE pairs.
func (s *Script) StepEnv(step Step) []string {
	merged := make(map[string]string, len(s.Env)+len(step.Env))
	for k, v := range s.Env {
		merged[k] = v
	}
	for k, v := range step.Env {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// expectableErrors are the error kinds a step may expect. Non-zero exits are
// expected through exit-code instead.
var expectableErrors = map[string]bool{
	stir.KindNotFound.String():    true,
	stir.KindSpawn.String():       true,
	stir.KindInvalidUTF8.String(): true,
}

func (s *Script) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, ValidateIncludes(s.Includes)...)

	errs = append(errs, validateEnv("env", s.Env)...)

	seen := make(map[string]int)
	for i, step := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)

		if strings.TrimSpace(step.Name) == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "step name cannot be empty"})
		} else if first, dup := seen[step.Name]; dup {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate step name '%s' (first used by steps[%d])", step.Name, first)})
		} else {
			seen[step.Name] = i
		}

		if len(step.Command) == 0 || strings.TrimSpace(step.Command[0]) == "" {
			errs = append(errs, ValidationError{Field: field + ".command", Message: "command must name a program"})
		}

		errs = append(errs, validateEnv(field+".env", step.Env)...)

		if step.Expect.ExitCode < 0 || step.Expect.ExitCode > 255 {
			errs = append(errs, ValidationError{Field: field + ".expect.exit-code", Message: "exit code must be between 0 and 255"})
		}
		if step.Expect.Error != "" {
			if !expectableErrors[step.Expect.Error] {
				errs = append(errs, ValidationError{Field: field + ".expect.error", Message: fmt.Sprintf("unknown error kind '%s', must be one of: not-found, spawn, invalid-utf8", step.Expect.Error)})
			}
			if step.Expect.ExitCode != 0 {
				errs = append(errs, ValidationError{Field: field + ".expect", Message: "error and exit-code cannot both be expected"})
			}
		}
	}

	return errs
}

// ValidateIncludes checks include paths on their own, so that a loader can
// reject them before trying to read any included file.
func ValidateIncludes(includes []string) ValidationErrors {
	var errs ValidationErrors
	for i, include := range includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}
	return errs
}

func validateEnv(field string, env map[string]string) ValidationErrors {
	var errs ValidationErrors
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(k) == "" || strings.Contains(k, "=") {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%q]", field, k), Message: "environment variable names cannot be empty or contain '='"})
		}
	}
	return errs
}
