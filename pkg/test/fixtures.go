package test

import (
	"stir/pkg/model"
)

// Ptr returns a pointer to s, for optional expectation fields.
func Ptr(s string) *string {
	return &s
}

// SampleScript returns a script covering each kind of expectation.
func SampleScript() *model.Script {
	return &model.Script{
		Env: map[string]string{"LANG": "C"},
		Steps: []model.Step{
			{
				Name:    "greet",
				Command: []string{"echo", "foo"},
				Expect:  model.Expectation{Stdout: Ptr("foo\n")},
			},
			{
				Name:    "locate",
				Command: []string{"which", "ls"},
				Expect:  model.Expectation{Stdout: Ptr("/bin/ls"), Trim: true},
			},
			{
				Name:    "fails",
				Command: []string{"false"},
				Expect:  model.Expectation{ExitCode: 1},
			},
			{
				Name:    "missing",
				Command: []string{"does-not-exist"},
				Expect:  model.Expectation{Error: "not-found"},
			},
		},
	}
}

// SampleScriptYAML returns SampleScript in its YAML form.
func SampleScriptYAML() string {
	return `env:
  LANG: C
steps:
  - name: greet
    command: [echo, foo]
    expect:
      stdout: "foo\n"
  - name: locate
    command: [which, ls]
    expect:
      stdout: /bin/ls
      trim: true
  - name: fails
    command: ["false"]
    expect:
      exit-code: 1
  - name: missing
    command: [does-not-exist]
    expect:
      error: not-found
`
}
