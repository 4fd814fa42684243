package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/ekr/pkg/cli"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t  *testing.T
	rt *toolkit.Runtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt, err := toolkit.NewTestRuntime(t.TempDir(), "/home/testuser", "testuser")
	require.NoError(t, err)
	return &fixture{t: t, rt: rt}
}

func (f *fixture) path(rel string) string {
	return filepath.Join(f.rt.GetJail(), filepath.FromSlash(rel))
}

func (f *fixture) write(rel, text string) {
	f.t.Helper()
	p := f.path(rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(f.t, os.WriteFile(p, []byte(text), 0o644))
}

func (f *fixture) read(rel string) string {
	f.t.Helper()
	data, err := os.ReadFile(f.path(rel))
	require.NoError(f.t, err)
	return string(data)
}

type result struct {
	Code   int
	Err    error
	Stdout string
	Stderr string
	Logs   *log.TestHandler
}

// run executes ekr with the vault rooted at /vault inside the jail.
func (f *fixture) run(stdin string, interactive bool, args ...string) result {
	f.t.Helper()

	var out, errOut bytes.Buffer
	lg, th := log.NewTestLogger(f.t, slog.LevelDebug)
	deps := &cli.Deps{
		Runtime:     f.rt,
		In:          strings.NewReader(stdin),
		Out:         &out,
		Err:         &errOut,
		Interactive: &interactive,
		Logger:      lg,
	}

	argv := append(append([]string{}, args...), "--vault", "/vault")
	code, err := cli.RunWithDeps(context.Background(), deps, argv)
	return result{Code: code, Err: err, Stdout: out.String(), Stderr: errOut.String(), Logs: th}
}
