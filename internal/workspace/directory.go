package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"coderbridge/internal/fileutil"
	"coderbridge/internal/logging"
	"coderbridge/internal/problem"
	"coderbridge/internal/textutil"
)

const (
	problemFileName = "problem.toml"
	testsDirName    = "tests"
)

// Directory materialises problems below a root directory:
//
//	<root>/<contest>/<ClassName>/problem.toml
//	<root>/<contest>/<ClassName>/tests/NN.in, NN.out
//	<root>/<contest>/<ClassName>/<ClassName><ext>
//
// Problems without contest metadata land in "unknown". The solution file is
// created once and never overwritten.
type Directory struct {
	root       string
	defaultExt string
	logger     *slog.Logger
	mu         sync.Mutex
	classIndex map[string]string
}

// NewDirectory returns a manager rooted at root. defaultExt applies to
// problems that do not name a language.
func NewDirectory(root, defaultExt string, logger *slog.Logger) *Directory {
	if defaultExt == "" {
		defaultExt = problem.LanguageJava.SourceExtension()
	}
	return &Directory{
		root:       root,
		defaultExt: defaultExt,
		logger:     logging.NewComponentLogger(logger, "workspace"),
		classIndex: make(map[string]string),
	}
}

// Root returns the workspace root directory.
func (d *Directory) Root() string {
	return d.root
}

// Check verifies the root exists (creating it if needed) and is writable.
func (d *Directory) Check() error {
	if strings.TrimSpace(d.root) == "" {
		return NewError("workspace root is not configured", nil)
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return NewError("create workspace root", err)
	}
	if err := unix.Access(d.root, unix.W_OK); err != nil {
		return NewError(fmt.Sprintf("workspace root %s is not writable", d.root), err)
	}
	return nil
}

// CreateProblemWorkspace writes the problem description, test files, and a
// solution stub.
func (d *Directory) CreateProblemWorkspace(ctx context.Context, p problem.Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return NewError(err.Error(), nil)
	}
	className := textutil.SanitizeFileName(p.ClassName)
	if className == "" {
		return NewError(fmt.Sprintf("invalid class name %q", p.ClassName), nil)
	}

	dir := filepath.Join(d.root, textutil.SanitizeToken(p.ContestName()), className)
	if err := os.MkdirAll(filepath.Join(dir, testsDirName), 0o755); err != nil {
		return NewError("create problem directory", err)
	}

	data, err := problem.Marshal(p)
	if err != nil {
		return NewError("encode problem", err)
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, problemFileName), data, 0o644); err != nil {
		return NewError("write problem description", err)
	}
	if err := writeTestCases(filepath.Join(dir, testsDirName), p.TestCases); err != nil {
		return err
	}

	solution := filepath.Join(dir, className+d.extension(p.Language))
	created, err := fileutil.WriteFileIfMissing(solution, []byte(stub(p)), 0o644)
	if err != nil {
		return NewError("write solution stub", err)
	}

	d.mu.Lock()
	d.classIndex[p.ClassName] = solution
	d.mu.Unlock()

	logging.WithContext(ctx, d.logger).Info("problem workspace created",
		logging.String("class_name", p.ClassName),
		logging.String("dir", dir),
		logging.Int("test_cases", len(p.TestCases)),
		logging.Bool("stub_created", created),
	)
	return nil
}

// GetSolutionSource returns the contents of the solution file for className.
func (d *Directory) GetSolutionSource(ctx context.Context, className string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := d.locate(className)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewError(fmt.Sprintf("no solution for class %s", className), nil)
		}
		return "", NewError("read solution", err)
	}
	return string(data), nil
}

func (d *Directory) locate(className string) (string, error) {
	name := textutil.SanitizeFileName(className)
	if name == "" {
		return "", NewError(fmt.Sprintf("invalid class name %q", className), nil)
	}

	d.mu.Lock()
	path, ok := d.classIndex[className]
	d.mu.Unlock()
	if ok {
		return path, nil
	}

	// Workspaces created by an earlier process are found by scanning the
	// contest directories for a matching class directory.
	contests, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewError(fmt.Sprintf("no solution for class %s", className), nil)
		}
		return "", NewError("scan workspace root", err)
	}
	for _, contest := range contests {
		if !contest.IsDir() {
			continue
		}
		dir := filepath.Join(d.root, contest.Name(), name)
		matches, err := filepath.Glob(filepath.Join(dir, name+".*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		return matches[0], nil
	}
	return "", NewError(fmt.Sprintf("no solution for class %s", className), nil)
}

func (d *Directory) extension(lang problem.Language) string {
	if lang == problem.LanguageUnknown {
		return d.defaultExt
	}
	return lang.SourceExtension()
}

func writeTestCases(dir string, cases []problem.TestCase) error {
	for i, tc := range cases {
		base := filepath.Join(dir, fmt.Sprintf("%02d", i+1))
		input := strings.Join(tc.Input, "\n") + "\n"
		if err := fileutil.WriteFileAtomic(base+".in", []byte(input), 0o644); err != nil {
			return NewError(fmt.Sprintf("write test case %d input", i+1), err)
		}
		if err := fileutil.WriteFileAtomic(base+".out", []byte(tc.Output+"\n"), 0o644); err != nil {
			return NewError(fmt.Sprintf("write test case %d output", i+1), err)
		}
	}
	return nil
}

func stub(p problem.Problem) string {
	switch p.Language {
	case problem.LanguagePython:
		return fmt.Sprintf("class %s:\n    # %s\n    pass\n", p.ClassName, p.Signature())
	case problem.LanguageCPP:
		return fmt.Sprintf("class %s {\npublic:\n    // %s\n};\n", p.ClassName, p.Signature())
	case problem.LanguageVB:
		return fmt.Sprintf("Public Class %s\n    ' %s\nEnd Class\n", p.ClassName, p.Signature())
	default:
		return fmt.Sprintf("public class %s {\n    // %s\n}\n", p.ClassName, p.Signature())
	}
}
