package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"coderbridge/internal/config"
	"coderbridge/internal/ipc"
	"coderbridge/internal/logging"
	"coderbridge/internal/problem"
	"coderbridge/internal/testsupport"
	"coderbridge/internal/workspace"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv(config.WorkspaceEnv, "")

	configPath := filepath.Join(base, "coderbridge.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[server]\nport_property = %q\nport_file = %q\n\n[workspace]\nroot = %q\nsolution_extension = %q\n\n[logging]\nlevel = \"error\"\ndir = %q\n",
		cfg.Server.PortProperty,
		cfg.Server.PortFile,
		cfg.Workspace.Root,
		cfg.Workspace.SolutionExtension,
		cfg.Logging.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeProblemFile(t *testing.T, dir string, p problem.Problem) string {
	t.Helper()
	data, err := problem.Marshal(p)
	if err != nil {
		t.Fatalf("marshal problem: %v", err)
	}
	path := filepath.Join(dir, p.ClassName+".toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write problem: %v", err)
	}
	return path
}

// startBridgeServer serves one CLI invocation against the workspace root.
func startBridgeServer(t *testing.T, cfg *config.Config) int {
	t.Helper()
	manager := workspace.NewDirectory(cfg.Workspace.Root, cfg.Workspace.SolutionExtension, logging.NewNop())
	srv, err := ipc.NewServer(manager, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	port, err := srv.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })
	return port
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestShowRendersProblem(t *testing.T) {
	dir := t.TempDir()
	path := writeProblemFile(t, dir, testsupport.SampleProblem())

	out, _, err := runCLI(t, []string{"show", path}, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "== BinaryCode ==")
	requireContains(t, out, "String[] decode(String message)")
	requireContains(t, out, "SRM 144 / Div 1 Level 1")
	requireContains(t, out, "2000 ms, 64 MB")
	requireContains(t, out, "22111")

	out, _, err = runCLI(t, []string{"show", "--examples", path}, "")
	if err != nil {
		t.Fatalf("show --examples: %v", err)
	}
	if strings.Contains(out, "22111") {
		t.Fatalf("hidden test case listed with --examples: %q", out)
	}
}

func TestShowReportsMissingTestCases(t *testing.T) {
	path := writeProblemFile(t, t.TempDir(), testsupport.EmptyProblem())
	out, _, err := runCLI(t, []string{"show", path}, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "[WARN] none")
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Workspace.Root)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestSendAndSourceThroughBridge(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeProblemFile(t, env.baseDir, testsupport.SampleProblem())

	port := startBridgeServer(t, env.cfg)
	out, _, err := runCLI(t, []string{"--port", strconv.Itoa(port), "send", path}, env.configPath)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	requireContains(t, out, "[OK] workspace created")

	solution := filepath.Join(env.cfg.Workspace.Root, "srm_144", "BinaryCode", "BinaryCode.java")
	if err := os.WriteFile(solution, []byte("public class BinaryCode { /* solved */ }\n"), 0o644); err != nil {
		t.Fatalf("write solution: %v", err)
	}

	// Each server accepts a single client, so the next invocation gets its own.
	port = startBridgeServer(t, env.cfg)
	t.Setenv(env.cfg.Server.PortProperty, strconv.Itoa(port))
	out, _, err = runCLI(t, []string{"source", "BinaryCode"}, env.configPath)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if out != "public class BinaryCode { /* solved */ }\n" {
		t.Fatalf("unexpected source %q", out)
	}

	port = startBridgeServer(t, env.cfg)
	_, _, err = runCLI(t, []string{"--port", strconv.Itoa(port), "source", "Unknown"}, env.configPath)
	if err == nil || !workspace.IsError(err) {
		t.Fatalf("expected workspace error, got %v", err)
	}
	requireContains(t, err.Error(), "no solution for class Unknown")
}

func TestSendWithoutPortPropertyFails(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeProblemFile(t, env.baseDir, testsupport.EmptyProblem())
	t.Setenv(env.cfg.Server.PortProperty, "")

	_, _, err := runCLI(t, []string{"send", path}, env.configPath)
	if err == nil {
		t.Fatal("expected error without port")
	}
	requireContains(t, err.Error(), "pass --port")
}

func TestSendToStoppedServerIsConnectivityError(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeProblemFile(t, env.baseDir, testsupport.EmptyProblem())

	manager := testsupport.NewFakeManager()
	srv, err := ipc.NewServer(manager, nil, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	port, err := srv.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	_, _, err = runCLI(t, []string{"--port", strconv.Itoa(port), "send", path}, env.configPath)
	if err == nil {
		t.Fatal("expected connectivity error")
	}
	requireContains(t, err.Error(), "connect to bridge")
	if workspace.IsError(err) {
		t.Fatalf("connectivity failure reported as workspace error: %v", err)
	}
}

func TestServeRunsChildWithPublishedPort(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithPortFile("port"), testsupport.WithPortProperty("ARENA_PORT"))

	out, _, err := runCLI(t, []string{"serve", "--", "sh", "-c", `echo "child-port=$ARENA_PORT"`}, env.configPath)
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected port and child output, got %q", out)
	}
	port, err := strconv.Atoi(lines[0])
	if err != nil || port <= 0 {
		t.Fatalf("first line should be the port, got %q", lines[0])
	}
	requireContains(t, out, fmt.Sprintf("child-port=%d", port))

	if _, err := os.Stat(env.cfg.Server.PortFile); !os.IsNotExist(err) {
		t.Fatalf("port file should be removed on exit, stat err=%v", err)
	}
}

func TestServeReportsChildFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"serve", "--", "sh", "-c", "exit 3"}, env.configPath)
	if err == nil {
		t.Fatal("expected child failure")
	}
	requireContains(t, err.Error(), "status 3")
}

func TestServeRefusesSecondInstance(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(env.cfg.Workspace.Root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	lock := flock.New(env.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"serve", "--", "sh", "-c", "true"}, env.configPath)
	if err == nil {
		t.Fatal("expected lock contention error")
	}
	requireContains(t, err.Error(), "another coderbridge server")
}
