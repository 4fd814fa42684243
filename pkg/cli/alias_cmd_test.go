package cli_test

import (
	"testing"

	"github.com/jlrickert/ekr/pkg/cli"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/report"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_SingleNote(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/notes/한글.md", "# 한글\n")

	res := f.run("", false, "add", "/vault/notes/한글.md")
	require.NoError(t, res.Err)
	require.Equal(t, 0, res.Code)
	require.Equal(t, "notes/한글.md: 1 aliases added\n", res.Stdout)
	require.Equal(t, "---\naliases:\n  - (eKR) 한글 | gksrmf\n---\n# 한글\n", f.read("vault/notes/한글.md"))

	res = f.run("", false, "rm", "/vault/notes/한글.md")
	require.NoError(t, res.Err)
	require.Equal(t, "notes/한글.md: 1 aliases removed\n", res.Stdout)
	require.Equal(t, "---\n---\n# 한글\n", f.read("vault/notes/한글.md"))
}

func TestAddCmd_TargetValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/a.md", "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "none", args: []string{"add"}},
		{name: "path_and_all", args: []string{"add", "/vault/a.md", "--all"}},
		{name: "folder_and_all", args: []string{"rm", "--folder", "x", "--all"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.run("", false, tt.args...)
			require.ErrorIs(t, res.Err, cli.ErrNoTarget)
			require.Equal(t, 1, res.Code)
		})
	}
}

func TestAddCmd_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/pic.png", "x")

	res := f.run("", false, "add", "/vault/pic.png")
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "pic.png is not a markdown note")

	res = f.run("", false, "add", "/vault/missing.md")
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "missing.md: not found")

	res = f.run("", false, "add", "/elsewhere/x.md")
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "outside the vault")
}

func TestAddCmd_BatchRequiresConfirmation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/a.md", "")

	res := f.run("", false, "add", "--all")
	require.ErrorIs(t, res.Err, cli.ErrConfirmationRequired)
	require.Equal(t, 1, res.Code)
	require.Empty(t, f.read("vault/a.md"))
}

func TestAddCmd_BatchPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  string
		changed bool
	}{
		{name: "yes", answer: "y\n", changed: true},
		{name: "full_word", answer: "YES\n", changed: true},
		{name: "no", answer: "n\n"},
		{name: "empty", answer: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.write("vault/journal/가.md", "")
			f.write("vault/other/나.md", "")

			res := f.run(tt.answer, true, "add", "--folder", "/vault/journal")
			require.NoError(t, res.Err)
			require.Contains(t, res.Stderr, "Add aliases in 1 notes under journal?")
			require.Contains(t, res.Stderr, "backed up")

			if tt.changed {
				require.Equal(t, "1 notes processed, 1 updated, 1 aliases added\n", res.Stdout)
				require.Contains(t, f.read("vault/journal/가.md"), "(eKR) 가 | rk")
			} else {
				require.Equal(t, "aborted\n", res.Stdout)
				require.Empty(t, f.read("vault/journal/가.md"))
			}
			require.Empty(t, f.read("vault/other/나.md"))
		})
	}
}

func TestAddCmd_AllWithReport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/a/제목.md", "")
	f.write("vault/b/별명.md", "---\naliases: [친구]\n---\n")
	f.write("vault/b/image.png", "x")

	res := f.run("", false, "add", "--all", "--yes", "--jobs", "4", "--report", "/vault/run.yaml")
	require.NoError(t, res.Err)
	require.Equal(t, "2 notes processed, 2 updated, 3 aliases added\n", res.Stdout)

	rep, err := report.ReadFile(afero.NewBasePathFs(afero.NewOsFs(), f.rt.GetJail()), "/vault/run.yaml")
	require.NoError(t, err)
	require.Equal(t, "the vault", rep.Scope)
	require.Equal(t, 2, rep.Result.FilesProcessed)
	require.Equal(t, 3, rep.Result.AliasesAdded)

	log.RequireEntry(t, res.Logs, func(e log.LoggedEntry) bool {
		return e.Msg == "report written"
	}, 0)
}

func TestRemoveCmd_DryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	text := "---\naliases:\n  - 영어\n  - (eKR) 영어 | duddj\n---\nbody\n"
	f.write("vault/x.md", text)

	res := f.run("", false, "rm", "--all", "--dry-run")
	require.NoError(t, res.Err)
	require.Equal(t, "(dry run) 1 notes processed, 1 updated, 1 aliases removed\n", res.Stdout)
	require.Equal(t, text, f.read("vault/x.md"))
}

func TestAddCmd_EmptyScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/empty/readme.txt", "x")

	res := f.run("", false, "add", "--folder", "/vault/empty")
	require.NoError(t, res.Err)
	require.Equal(t, "no markdown notes found\n", res.Stdout)
}

func TestRemoveCmd_MissingFolder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.write("vault/a.md", "")

	res := f.run("", false, "rm", "--folder", "/vault/nope", "--yes")
	require.Equal(t, 1, res.Code)
	require.Contains(t, res.Stderr, "nope: not found")
}
