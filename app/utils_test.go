package app

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/require"

	actx "go.hackfix.me/strata/app/context"
)

type testApp struct {
	*App
	stdout, stderr *bytes.Buffer
	env            *mockEnv
}

func newTestApp(t *testing.T, opts ...Option) *testApp {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := &mockEnv{env: map[string]string{}}

	defaultOpts := []Option{
		WithEnv(env),
		WithFDs(strings.NewReader(""), stdout, stderr),
		WithFS(memoryfs.New()),
		WithLogger(false),
	}
	a, err := New("strata", "/config.json", append(defaultOpts, opts...)...)
	require.NoError(t, err)

	return &testApp{App: a, stdout: stdout, stderr: stderr, env: env}
}

// Run executes the app with the given arguments, resetting the output buffers
// beforehand so assertions only see the output of this run.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()
	return ta.App.Run(args)
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

func (me *mockEnv) Set(key, val string) error {
	me.mx.Lock()
	defer me.mx.Unlock()
	me.env[key] = val
	return nil
}
