package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/epuerta/kori/internal/linediff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runKori executes the command tree with args against an empty HOME and returns
// stdout.
func runKori(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runKoriIn(t, t.TempDir(), stdin, args...)
}

func runKoriIn(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	for _, env := range os.Environ() {
		if name, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(name, "KORI_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}

	rootCmd, a := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiffUnified(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.md", "a\nb\nc\n")
	newPath := writeFile(t, dir, "new.md", "a\nc\nd\n")

	out, err := runKori(t, "", "diff", "--view", "unified", "--line-numbers=false", oldPath, newPath)
	require.NoError(t, err)

	want := "--- " + oldPath + "\n" +
		"+++ " + newPath + "\n" +
		"  a\n- b\n  c\n+ d\n" +
		"2 unchanged, 1 added, 1 removed, 0 modified\n"
	assert.Equal(t, want, out)
}

func TestDiffSideBySideFromStdin(t *testing.T) {
	dir := t.TempDir()
	newPath := writeFile(t, dir, "new.md", "- [ ] buy oat milk\n")

	out, err := runKori(t, "- [ ] buy milk\n", "diff", "-w", "60", "--line-numbers=false", "-", newPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "(stdin)"))
	assert.Contains(t, lines[1], "~ - [ ] buy milk")
	assert.Contains(t, lines[1], "│ ~ - [ ] buy oat milk")
	assert.Equal(t, "0 unchanged, 0 added, 0 removed, 1 modified", lines[2])
}

func TestDiffJSON(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.md", "keep\ndrop")
	newPath := writeFile(t, dir, "new.md", "keep")

	out, err := runKori(t, "", "diff", "--json", oldPath, newPath)
	require.NoError(t, err)

	var doc diffOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.False(t, doc.Equal)
	assert.Equal(t, linediff.Stats{Unchanged: 1, Removed: 1}, doc.Stats)
	require.Equal(t, 2, doc.Result.Rows())
	o, n := doc.Result.Row(1)
	assert.Equal(t, linediff.Removed, o.Type)
	assert.True(t, n.IsPlaceholder())
}

func TestDiffExitCode(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "same\n")
	b := writeFile(t, dir, "b.md", "same\n")
	c := writeFile(t, dir, "c.md", "other\n")

	_, err := runKori(t, "", "diff", "--exit-code", a, b)
	assert.NoError(t, err)

	_, err = runKori(t, "", "diff", "--exit-code", a, c)
	assert.ErrorIs(t, err, errDifferent)

	// Without the flag a difference is not an error.
	_, err = runKori(t, "", "diff", a, c)
	assert.NoError(t, err)
}

func TestDiffErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "x")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"both stdin", []string{"diff", "-", "-"}, "only one input"},
		{"missing file", []string{"diff", a, filepath.Join(dir, "nope.md")}, "nope.md"},
		{"bad view", []string{"diff", "--view", "diagonal", a, a}, "invalid view mode"},
		{"one argument", []string{"diff", a}, "accepts 2 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runKori(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHistoryPrint(t *testing.T) {
	dir := t.TempDir()
	v1 := writeFile(t, dir, "v1.md", "a")
	v2 := writeFile(t, dir, "v2.md", "a\nb")
	v3 := writeFile(t, dir, "v3.md", "b")

	out, err := runKori(t, "", "history", "--print", "--view", "unified", "--line-numbers=false", v1, v2, v3)
	require.NoError(t, err)

	want := "--- " + v1 + "\n+++ " + v2 + "\n  a\n+ b\n" +
		"1 unchanged, 1 added, 0 removed, 0 modified\n" +
		"\n" +
		"--- " + v2 + "\n+++ " + v3 + "\n- a\n  b\n" +
		"1 unchanged, 0 added, 1 removed, 0 modified\n"
	assert.Equal(t, want, out)
}

func TestHistoryNeedsTwoFiles(t *testing.T) {
	_, err := runKori(t, "", "history", "only.md")
	require.Error(t, err)
}

func TestConfigFileApplies(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.md", "a")
	newPath := writeFile(t, dir, "new.md", "b")

	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".kori"), 0o755))
	writeFile(t, filepath.Join(home, ".kori"), "config.yaml", "view: unified\nline_numbers: false\n")

	out, err := runKoriIn(t, home, "", "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Equal(t, "--- "+oldPath+"\n+++ "+newPath+"\n- a\n+ b\n0 unchanged, 1 added, 1 removed, 0 modified\n", out)
}

func TestCompletion(t *testing.T) {
	out, err := runKori(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "kori")

	_, err = runKori(t, "", "completion", "powershell")
	assert.Error(t, err)
}
