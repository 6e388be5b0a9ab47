package problem

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Contest carries the optional round metadata of a problem.
type Contest struct {
	Name      string `json:"name" toml:"name"`
	RoundName string `json:"round_name,omitempty" toml:"round_name"`
}

// Limits describes the resource limits enforced by the arena.
type Limits struct {
	TimeLimitMillis int `json:"time_limit_ms" toml:"time_limit_ms"`
	MemoryLimitMB   int `json:"memory_limit_mb" toml:"memory_limit_mb"`
}

// TestCase is one input/expected-output pair. Input order is significant.
type TestCase struct {
	Input   []string `json:"input" toml:"input"`
	Output  string   `json:"output" toml:"output"`
	Example bool     `json:"example" toml:"example"`
}

// Problem is the structural description of a contest problem.
type Problem struct {
	ClassName  string     `json:"class_name" toml:"class_name"`
	MethodName string     `json:"method_name" toml:"method_name"`
	ReturnType string     `json:"return_type" toml:"return_type"`
	ParamNames []string   `json:"param_names" toml:"param_names"`
	ParamTypes []string   `json:"param_types" toml:"param_types"`
	Language   Language   `json:"language,omitempty" toml:"language"`
	Contest    *Contest   `json:"contest,omitempty" toml:"contest"`
	Limits     *Limits    `json:"limits,omitempty" toml:"limits"`
	TestCases  []TestCase `json:"test_cases" toml:"test_cases"`
}

// Validate reports whether the problem carries enough data to build a workspace.
func (p Problem) Validate() error {
	if strings.TrimSpace(p.ClassName) == "" {
		return errors.New("problem class name is required")
	}
	if len(p.ParamNames) != len(p.ParamTypes) {
		return fmt.Errorf("problem %s: %d parameter names but %d parameter types",
			p.ClassName, len(p.ParamNames), len(p.ParamTypes))
	}
	for i, tc := range p.TestCases {
		if len(tc.Input) != len(p.ParamTypes) {
			return fmt.Errorf("problem %s: test case %d has %d inputs, want %d",
				p.ClassName, i, len(tc.Input), len(p.ParamTypes))
		}
	}
	return nil
}

// ContestName returns the contest name or an empty string when absent.
func (p Problem) ContestName() string {
	if p.Contest == nil {
		return ""
	}
	return p.Contest.Name
}

// Examples returns the test cases flagged as examples.
func (p Problem) Examples() []TestCase {
	out := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if tc.Example {
			out = append(out, tc)
		}
	}
	return out
}

// Signature renders the solution method as "ReturnType methodName(Type name, ...)".
func (p Problem) Signature() string {
	params := make([]string, 0, len(p.ParamNames))
	for i, name := range p.ParamNames {
		typ := ""
		if i < len(p.ParamTypes) {
			typ = p.ParamTypes[i]
		}
		params = append(params, strings.TrimSpace(typ+" "+name))
	}
	return fmt.Sprintf("%s %s(%s)", p.ReturnType, p.MethodName, strings.Join(params, ", "))
}

// Equal reports structural equality. Nil and empty slices compare equal;
// absent metadata differs from zero-valued metadata.
func Equal(a, b Problem) bool {
	if a.ClassName != b.ClassName ||
		a.MethodName != b.MethodName ||
		a.ReturnType != b.ReturnType ||
		a.Language != b.Language {
		return false
	}
	if !slices.Equal(a.ParamNames, b.ParamNames) || !slices.Equal(a.ParamTypes, b.ParamTypes) {
		return false
	}
	if !equalPtr(a.Contest, b.Contest) || !equalPtr(a.Limits, b.Limits) {
		return false
	}
	return slices.EqualFunc(a.TestCases, b.TestCases, TestCase.Equal)
}

// Equal reports structural equality of two test cases.
func (tc TestCase) Equal(other TestCase) bool {
	return tc.Output == other.Output &&
		tc.Example == other.Example &&
		slices.Equal(tc.Input, other.Input)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
