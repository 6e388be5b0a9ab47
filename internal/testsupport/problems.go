package testsupport

import "coderbridge/internal/problem"

// SampleProblem returns a fully populated problem with contest metadata,
// limits, and a mix of example and hidden test cases.
func SampleProblem() problem.Problem {
	return problem.Problem{
		ClassName:  "BinaryCode",
		MethodName: "decode",
		ReturnType: "String[]",
		ParamNames: []string{"message"},
		ParamTypes: []string{"String"},
		Language:   problem.LanguageJava,
		Contest:    &problem.Contest{Name: "SRM 144", RoundName: "Div 1 Level 1"},
		Limits:     &problem.Limits{TimeLimitMillis: 2000, MemoryLimitMB: 64},
		TestCases: []problem.TestCase{
			{Input: []string{`"123210122"`}, Output: `{ "011100011",  "NONE" }`, Example: true},
			{Input: []string{`"11"`}, Output: `{ "01",  "10" }`, Example: true},
			{Input: []string{`"22111"`}, Output: `{ "NONE",  "11001" }`},
		},
	}
}

// MultiParamProblem returns a problem whose test inputs span several
// parameters so input order can be checked end to end.
func MultiParamProblem() problem.Problem {
	return problem.Problem{
		ClassName:  "Interval",
		MethodName: "count",
		ReturnType: "int",
		ParamNames: []string{"lo", "hi", "step"},
		ParamTypes: []string{"int", "int", "int"},
		TestCases: []problem.TestCase{
			{Input: []string{"1", "10", "3"}, Output: "4", Example: true},
			{Input: []string{"10", "1", "3"}, Output: "0"},
		},
	}
}

// EmptyProblem returns a problem with no parameters, no test cases, and no
// optional metadata.
func EmptyProblem() problem.Problem {
	return problem.Problem{
		ClassName:  "Nothing",
		MethodName: "run",
		ReturnType: "void",
	}
}
