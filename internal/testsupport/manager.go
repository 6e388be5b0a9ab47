package testsupport

import (
	"context"
	"sync"

	"coderbridge/internal/problem"
	"coderbridge/internal/workspace"
)

// FakeManager is an in-memory workspace.Manager that records calls.
type FakeManager struct {
	mu sync.Mutex

	Created     []problem.Problem
	SourceCalls []string

	// Sources maps class names to solution sources.
	Sources map[string]string
	// CreateErr and SourceErr are returned by the matching call when set.
	CreateErr error
	SourceErr error
	// PanicWith makes every call panic with the given value when non-nil.
	PanicWith any
	// Block, when non-nil, is received from before each call returns.
	Block chan struct{}
}

var _ workspace.Manager = (*FakeManager)(nil)

// NewFakeManager returns a manager with an empty source table.
func NewFakeManager() *FakeManager {
	return &FakeManager{Sources: make(map[string]string)}
}

func (m *FakeManager) CreateProblemWorkspace(ctx context.Context, p problem.Problem) error {
	m.wait(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PanicWith != nil {
		panic(m.PanicWith)
	}
	m.Created = append(m.Created, p)
	return m.CreateErr
}

func (m *FakeManager) GetSolutionSource(ctx context.Context, className string) (string, error) {
	m.wait(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PanicWith != nil {
		panic(m.PanicWith)
	}
	m.SourceCalls = append(m.SourceCalls, className)
	if m.SourceErr != nil {
		return "", m.SourceErr
	}
	source, ok := m.Sources[className]
	if !ok {
		return "", workspace.NewError("no solution for class "+className, nil)
	}
	return source, nil
}

// SetSource replaces the source served for className.
func (m *FakeManager) SetSource(className, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sources[className] = source
}

// SetErrors replaces the injected failures.
func (m *FakeManager) SetErrors(createErr, sourceErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateErr = createErr
	m.SourceErr = sourceErr
}

// CreatedProblems returns a copy of the recorded CreateProblemWorkspace calls.
func (m *FakeManager) CreatedProblems() []problem.Problem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]problem.Problem(nil), m.Created...)
}

// SourceRequests returns a copy of the recorded GetSolutionSource calls.
func (m *FakeManager) SourceRequests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.SourceCalls...)
}

func (m *FakeManager) wait(ctx context.Context) {
	m.mu.Lock()
	block := m.Block
	m.mu.Unlock()
	if block == nil {
		return
	}
	select {
	case <-block:
	case <-ctx.Done():
	}
}
