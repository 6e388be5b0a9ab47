package problem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderbridge/internal/problem"
)

func sample() problem.Problem {
	return problem.Problem{
		ClassName:  "BinaryCode",
		MethodName: "decode",
		ReturnType: "String[]",
		ParamNames: []string{"message"},
		ParamTypes: []string{"String"},
		Language:   problem.LanguageJava,
		Contest:    &problem.Contest{Name: "SRM 144 DIV 1"},
		Limits:     &problem.Limits{TimeLimitMillis: 2000, MemoryLimitMB: 256},
		TestCases: []problem.TestCase{
			{Input: []string{`"123210122"`}, Output: `{ "011100011",  "NONE" }`, Example: true},
			{Input: []string{`"11"`}, Output: `{ "01",  "10" }`},
		},
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := sample()
	b := sample()
	assert.True(t, problem.Equal(a, b))

	b.Contest = &problem.Contest{Name: "SRM 144 DIV 1"}
	assert.True(t, problem.Equal(a, b), "distinct pointers with equal values")

	b.TestCases[0].Input = []string{`"123210122"`, "extra"}
	assert.False(t, problem.Equal(a, b))
}

func TestEqualTreatsNilAndEmptySlicesAlike(t *testing.T) {
	a := problem.Problem{ClassName: "Empty"}
	b := problem.Problem{ClassName: "Empty", ParamNames: []string{}, ParamTypes: []string{}, TestCases: []problem.TestCase{}}
	assert.True(t, problem.Equal(a, b))
}

func TestEqualDistinguishesAbsentMetadata(t *testing.T) {
	a := problem.Problem{ClassName: "X"}
	b := problem.Problem{ClassName: "X", Limits: &problem.Limits{}}
	assert.False(t, problem.Equal(a, b))
}

func TestEqualRespectsInputOrder(t *testing.T) {
	a := problem.Problem{ClassName: "X", TestCases: []problem.TestCase{{Input: []string{"1", "2"}, Output: "3"}}}
	b := problem.Problem{ClassName: "X", TestCases: []problem.TestCase{{Input: []string{"2", "1"}, Output: "3"}}}
	assert.False(t, problem.Equal(a, b))
}

func TestValidate(t *testing.T) {
	require.NoError(t, sample().Validate())

	p := sample()
	p.ClassName = " "
	assert.Error(t, p.Validate())

	p = sample()
	p.ParamTypes = nil
	assert.Error(t, p.Validate())
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "String[] decode(String message)", sample().Signature())
	assert.Equal(t, "int multiply()", problem.Problem{ReturnType: "int", MethodName: "multiply"}.Signature())
}

func TestParseLanguage(t *testing.T) {
	lang, err := problem.ParseLanguage(" C++ ")
	require.NoError(t, err)
	assert.Equal(t, problem.LanguageCPP, lang)
	assert.Equal(t, ".cpp", lang.SourceExtension())

	lang, err = problem.ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, "unknown", lang.String())

	_, err = problem.ParseLanguage("cobol")
	assert.Error(t, err)
}

func TestMarshalThenLoadFile(t *testing.T) {
	want := sample()
	data, err := problem.Marshal(want)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "problem.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := problem.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, problem.Equal(want, got), "got %#v", got)
}

func TestParseNormalisesLanguageAndKeepsOptionalFieldsAbsent(t *testing.T) {
	got, err := problem.Parse([]byte(`
class_name = "Multiply"
method_name = "multiply"
return_type = "int"
param_names = []
param_types = []
language = "Java"

[[test_cases]]
input = []
output = "1"
`))
	require.NoError(t, err)
	assert.Equal(t, problem.LanguageJava, got.Language)
	assert.Nil(t, got.Contest)
	assert.Nil(t, got.Limits)
	require.Len(t, got.TestCases, 1)
	assert.Empty(t, got.TestCases[0].Input)
	assert.Equal(t, "", got.ContestName())
	assert.Empty(t, got.Examples())
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := problem.Parse([]byte("class_name = \"A\"\nbogus = 1\n"))
	assert.Error(t, err)
}
