package workspace_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderbridge/internal/logging"
	"coderbridge/internal/problem"
	"coderbridge/internal/workspace"
)

func sampleProblem() problem.Problem {
	return problem.Problem{
		ClassName:  "BinaryCode",
		MethodName: "decode",
		ReturnType: "String[]",
		ParamNames: []string{"message"},
		ParamTypes: []string{"String"},
		Contest:    &problem.Contest{Name: "SRM 144", RoundName: "Div 1"},
		TestCases: []problem.TestCase{
			{Input: []string{`"123210122"`}, Output: `{ "011100011", "NONE" }`, Example: true},
			{Input: []string{`"11"`}, Output: `{ "01", "10" }`},
		},
	}
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "boom", workspace.NewError("boom", nil).Error())
	assert.Equal(t, "read: eof", workspace.NewError("read", errors.New("eof")).Error())
	assert.Equal(t, "eof", workspace.NewError("", errors.New("eof")).Error())

	cause := errors.New("disk full")
	wrapped := fmt.Errorf("handler: %w", workspace.NewError("write", cause))
	assert.True(t, workspace.IsError(wrapped))
	assert.ErrorIs(t, wrapped, cause)

	we, ok := workspace.AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "write", we.Message)

	assert.False(t, workspace.IsError(errors.New("plain")))
}

func TestDirectoryCreatesLayout(t *testing.T) {
	root := t.TempDir()
	dir := workspace.NewDirectory(root, ".java", logging.NewNop())
	require.NoError(t, dir.Check())

	p := sampleProblem()
	require.NoError(t, dir.CreateProblemWorkspace(context.Background(), p))

	base := filepath.Join(root, "srm_144", "BinaryCode")
	desc, err := problem.LoadFile(filepath.Join(base, "problem.toml"))
	require.NoError(t, err)
	assert.True(t, problem.Equal(p, desc), "round-tripped problem should match")

	in, err := os.ReadFile(filepath.Join(base, "tests", "01.in"))
	require.NoError(t, err)
	assert.Equal(t, "\"123210122\"\n", string(in))
	out, err := os.ReadFile(filepath.Join(base, "tests", "02.out"))
	require.NoError(t, err)
	assert.Equal(t, "{ \"01\", \"10\" }\n", string(out))

	source, err := dir.GetSolutionSource(context.Background(), "BinaryCode")
	require.NoError(t, err)
	assert.Contains(t, source, "public class BinaryCode")
	assert.Contains(t, source, "String[] decode(String message)")
}

func TestDirectoryKeepsExistingSolution(t *testing.T) {
	root := t.TempDir()
	dir := workspace.NewDirectory(root, "", nil)
	p := sampleProblem()
	require.NoError(t, dir.CreateProblemWorkspace(context.Background(), p))

	solution := filepath.Join(root, "srm_144", "BinaryCode", "BinaryCode.java")
	require.NoError(t, os.WriteFile(solution, []byte("my solution"), 0o644))

	require.NoError(t, dir.CreateProblemWorkspace(context.Background(), p))
	source, err := dir.GetSolutionSource(context.Background(), "BinaryCode")
	require.NoError(t, err)
	assert.Equal(t, "my solution", source)
}

func TestDirectoryFindsSolutionsFromEarlierRuns(t *testing.T) {
	root := t.TempDir()
	p := sampleProblem()
	p.Contest = nil
	p.Language = problem.LanguagePython
	require.NoError(t, workspace.NewDirectory(root, ".java", nil).CreateProblemWorkspace(context.Background(), p))

	fresh := workspace.NewDirectory(root, ".java", nil)
	source, err := fresh.GetSolutionSource(context.Background(), "BinaryCode")
	require.NoError(t, err)
	assert.Contains(t, source, "class BinaryCode:")
	assert.FileExists(t, filepath.Join(root, "unknown", "BinaryCode", "BinaryCode.py"))
}

func TestDirectoryUnknownClassIsDomainError(t *testing.T) {
	dir := workspace.NewDirectory(t.TempDir(), ".java", nil)
	_, err := dir.GetSolutionSource(context.Background(), "Missing")
	require.Error(t, err)
	we, ok := workspace.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "no solution for class Missing", we.Message)

	_, err = dir.GetSolutionSource(context.Background(), "..")
	assert.True(t, workspace.IsError(err))
}

func TestDirectoryRejectsInvalidProblem(t *testing.T) {
	dir := workspace.NewDirectory(t.TempDir(), ".java", nil)
	p := sampleProblem()
	p.ParamTypes = nil
	err := dir.CreateProblemWorkspace(context.Background(), p)
	assert.True(t, workspace.IsError(err))
}

func TestDirectoryHonoursCancelledContext(t *testing.T) {
	dir := workspace.NewDirectory(t.TempDir(), ".java", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, dir.CreateProblemWorkspace(ctx, sampleProblem()), context.Canceled)
}
