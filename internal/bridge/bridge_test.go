package bridge_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderbridge/internal/bridge"
	"coderbridge/internal/ipc"
	"coderbridge/internal/problem"
	"coderbridge/internal/testsupport"
	"coderbridge/internal/workspace"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestPortFromLookup(t *testing.T) {
	cases := []struct {
		name    string
		values  map[string]string
		want    int
		wantErr bool
	}{
		{name: "valid", values: map[string]string{bridge.DefaultPortProperty: "40123"}, want: 40123},
		{name: "padded", values: map[string]string{bridge.DefaultPortProperty: " 8080\n"}, want: 8080},
		{name: "missing", values: map[string]string{}, wantErr: true},
		{name: "blank", values: map[string]string{bridge.DefaultPortProperty: " "}, wantErr: true},
		{name: "not a number", values: map[string]string{bridge.DefaultPortProperty: "abc"}, wantErr: true},
		{name: "zero", values: map[string]string{bridge.DefaultPortProperty: "0"}, wantErr: true},
		{name: "too large", values: map[string]string{bridge.DefaultPortProperty: "70000"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port, err := bridge.PortFromLookup(lookupFrom(tc.values), "")
			if tc.wantErr {
				assert.ErrorIs(t, err, bridge.ErrPortProperty)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, port)
		})
	}
}

func TestPortFromEnv(t *testing.T) {
	t.Setenv("ARENA_PORT", "5151")
	port, err := bridge.PortFromEnv("ARENA_PORT")
	require.NoError(t, err)
	assert.Equal(t, 5151, port)
}

func TestPublishPortReplacesExisting(t *testing.T) {
	env := []string{"PATH=/bin", "CODERBRIDGE_PORT=1", "CODERBRIDGE_PORTX=2"}
	out := bridge.PublishPort(env, "", 4242)
	assert.Equal(t, []string{"PATH=/bin", "CODERBRIDGE_PORTX=2", "CODERBRIDGE_PORT=4242"}, out)
	assert.Equal(t, "CODERBRIDGE_PORT=1", env[1], "input must not be modified")

	port, err := bridge.PortFromLookup(envLookup(out), "")
	require.NoError(t, err)
	assert.Equal(t, 4242, port)
}

func envLookup(env []string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		for _, kv := range env {
			if k, v, ok := strings.Cut(kv, "="); ok && k == key {
				return v, true
			}
		}
		return "", false
	}
}

func TestBridgeEndToEnd(t *testing.T) {
	mgr := testsupport.NewFakeManager()
	mgr.SetSource("BinaryCode", "solved")
	srv, err := ipc.NewServer(mgr, nil, nil)
	require.NoError(t, err)
	port, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Stop() })

	env := bridge.PublishPort(nil, "ARENA_PORT", port)
	b := bridge.New(bridge.Options{
		PortProperty: "ARENA_PORT",
		Lookup:       envLookup(env),
	})
	t.Cleanup(func() { _ = b.Close() })

	p := testsupport.SampleProblem()
	require.NoError(t, b.CreateProblemWorkspace(context.Background(), p))
	source, err := b.GetSolutionSource(context.Background(), "BinaryCode")
	require.NoError(t, err)
	assert.Equal(t, "solved", source)

	_, err = b.GetSolutionSource(context.Background(), "Other")
	assert.True(t, workspace.IsError(err))

	first, err := b.Client()
	require.NoError(t, err)
	second, err := b.Client()
	require.NoError(t, err)
	assert.Same(t, first, second)

	created := mgr.CreatedProblems()
	require.Len(t, created, 1)
	assert.True(t, problem.Equal(p, created[0]))
}

func TestBridgeMissingPortIsSticky(t *testing.T) {
	calls := 0
	b := bridge.New(bridge.Options{Lookup: func(string) (string, bool) {
		calls++
		return "", false
	}})
	err := b.CreateProblemWorkspace(context.Background(), testsupport.EmptyProblem())
	assert.ErrorIs(t, err, bridge.ErrPortProperty)
	_, err = b.GetSolutionSource(context.Background(), "X")
	assert.ErrorIs(t, err, bridge.ErrPortProperty)
	assert.Equal(t, 1, calls)
	assert.NoError(t, b.Close())
}

func TestBridgeClosedBeforeUse(t *testing.T) {
	b := bridge.New(bridge.Options{Lookup: func(string) (string, bool) { return "1234", true }})
	require.NoError(t, b.Close())
	_, err := b.GetSolutionSource(context.Background(), "X")
	assert.ErrorIs(t, err, ipc.ErrClientClosed)
}
