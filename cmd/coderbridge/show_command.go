package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"coderbridge/internal/problem"
)

func newShowCommand() *cobra.Command {
	var examplesOnly bool

	cmd := &cobra.Command{
		Use:         "show <problem.toml>",
		Short:       "Summarise a problem description and its test cases",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := problem.LoadFile(args[0])
			if err != nil {
				return err
			}
			renderProblem(cmd.OutOrStdout(), p, examplesOnly)
			return nil
		},
	}
	cmd.Flags().BoolVar(&examplesOnly, "examples", false, "List only example test cases")
	return cmd
}

func renderProblem(out io.Writer, p problem.Problem, examplesOnly bool) {
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader(p.ClassName, colorize))
	fmt.Fprintln(out, renderStatusLine("Signature", statusInfo, p.Signature(), colorize))
	fmt.Fprintln(out, renderStatusLine("Language", statusInfo, p.Language.String(), colorize))
	if p.Contest != nil {
		contest := p.Contest.Name
		if p.Contest.RoundName != "" {
			contest += " / " + p.Contest.RoundName
		}
		fmt.Fprintln(out, renderStatusLine("Contest", statusInfo, contest, colorize))
	}
	if p.Limits != nil {
		limits := fmt.Sprintf("%d ms, %d MB", p.Limits.TimeLimitMillis, p.Limits.MemoryLimitMB)
		fmt.Fprintln(out, renderStatusLine("Limits", statusInfo, limits, colorize))
	}

	cases := p.TestCases
	if examplesOnly {
		cases = p.Examples()
	}
	if len(cases) == 0 {
		fmt.Fprintln(out, renderStatusLine("Test cases", statusWarn, "none", colorize))
		return
	}

	headers := []string{"#", "Input", "Expected", "Example"}
	rows := make([][]string, 0, len(cases))
	for i, tc := range cases {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strings.Join(tc.Input, ", "),
			tc.Output,
			yesNo(tc.Example),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
