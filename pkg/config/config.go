package config

import (
	"fmt"
	"path/filepath"

	"stir/pkg/log"
	"stir/pkg/model"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// AppFs is the filesystem scripts are read from.
var AppFs = afero.NewOsFs()

// LoadScript reads a script, resolves its includes and validates the result.
func LoadScript(filename string, logger log.Logger) (*model.Script, error) {
	script, err := loadScriptFile(filename)
	if err != nil {
		return nil, err
	}

	// Empty include paths are reported as validation errors, not as failed reads.
	if errs := model.ValidateIncludes(script.Includes); len(errs) > 0 {
		return nil, errs
	}

	if len(script.Includes) > 0 {
		script, err = processIncludes(script, filename, logger)
		if err != nil {
			return nil, err
		}
	}

	if errs := script.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &script, nil
}

// processIncludes loads included scripts depth-first and merges them under
// the including script.
func processIncludes(script model.Script, baseFile string, logger log.Logger) (model.Script, error) {
	active := make(map[string]bool) // files on the current include chain
	return processIncludesRecursive(script, baseFile, active, logger)
}

func processIncludesRecursive(script model.Script, baseFile string, active map[string]bool, logger log.Logger) (model.Script, error) {
	absBase, err := filepath.Abs(baseFile)
	if err != nil {
		return model.Script{}, fmt.Errorf("failed to resolve absolute path for %s: %w", baseFile, err)
	}
	if active[absBase] {
		return model.Script{}, fmt.Errorf("circular include detected: %s", baseFile)
	}
	active[absBase] = true
	defer delete(active, absBase)

	result := &model.Script{}

	for _, includePath := range script.Includes {
		resolvedPath := resolveIncludePath(baseFile, includePath)

		included, err := loadScriptFile(resolvedPath)
		if err != nil {
			return model.Script{}, fmt.Errorf("failed to load include '%s': %w", includePath, err)
		}

		if len(included.Includes) > 0 {
			included, err = processIncludesRecursive(included, resolvedPath, active, logger)
			if err != nil {
				return model.Script{}, err
			}
		}

		result = mergeScripts(result, &included, logger)
	}

	// The including file's own content has the highest priority
	result = mergeScripts(result, &script, logger)

	return *result, nil
}

func loadScriptFile(filename string) (model.Script, error) {
	f, err := afero.ReadFile(AppFs, filename)
	if err != nil {
		return model.Script{}, err
	}

	var script model.Script
	if err := yaml.Unmarshal(f, &script); err != nil {
		return model.Script{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return script, nil
}

func resolveIncludePath(baseFile, includePath string) string {
	if filepath.IsAbs(includePath) {
		return includePath
	}
	return filepath.Join(filepath.Dir(baseFile), includePath)
}

// mergeScripts merges override into base:
// - Steps: base order is kept; an override step whose name exists in base
//   replaces it in place, the rest are appended
// - Env: last-wins by key
// Includes are not merged, they have already been processed.
func mergeScripts(base, override *model.Script, logger log.Logger) *model.Script {
	return &model.Script{
		Env:   mergeEnv(base.Env, override.Env, logger),
		Steps: mergeSteps(base.Steps, override.Steps, logger),
	}
}

func mergeSteps(base, override []model.Step, logger log.Logger) []model.Step {
	result := append([]model.Step{}, base...)
	index := make(map[string]int, len(base))
	for i, step := range base {
		index[step.Name] = i
	}

	for _, step := range override {
		if i, exists := index[step.Name]; exists {
			logger.Warn("Step overridden", "step", step.Name)
			result[i] = step
			continue
		}
		result = append(result, step)
	}

	return result
}

func mergeEnv(base, override map[string]string, logger log.Logger) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}

	result := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		if existing, exists := result[k]; exists && existing != v {
			logger.Debug("Environment variable overridden", "name", k)
		}
		result[k] = v
	}
	return result
}
