package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes tapc with args and returns what it printed on stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func compiled(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(src, []byte("# test list\nworld 110\nword 120\nhello 200\nhelp 150\nhelmet 90\n"), 0644))

	out, err := run(t, "compile", src)
	require.NoError(t, err)
	dict := filepath.Join(dir, "words.dict")
	assert.Contains(t, out, dict+": 5 words")
	return dict
}

func TestCompileAndInspect(t *testing.T) {
	dict := compiled(t)

	out, err := run(t, "inspect", dict)
	require.NoError(t, err)
	assert.Contains(t, out, "words")
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "200")

	other := filepath.Join(t.TempDir(), "small.dict")
	_, err = run(t, "compile", strings.TrimSuffix(dict, ".dict")+".txt", "-o", other, "--max-words", "2")
	require.NoError(t, err)
	out, err = run(t, "check", other, "world", "word")
	require.NoError(t, err)
	assert.Equal(t, "world\tvalid\nword\tvalid\n", out)
}

func TestCheck(t *testing.T) {
	dict := compiled(t)

	out, err := run(t, "check", dict, "hello", "helo")
	assert.EqualError(t, err, "1 of 2 words missing")
	assert.Equal(t, "hello\tvalid\nhelo\tmissing\n", out)

	_, err = run(t, "check", filepath.Join(t.TempDir(), "nope.dict"), "x")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	dict := compiled(t)

	out, err := run(t, "suggest", dict, "wprld")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "world")

	out, err = run(t, "suggest", dict, "Wordx", "--skip", "4", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. Word ")
	assert.Equal(t, 1, strings.Count(out, "\n"))

	out, err = run(t, "suggest", dict, "hel", "-x")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "helmet")

	_, err = run(t, "suggest", dict, "hel", "--layout", "dvorak-ish")
	assert.Error(t, err)
	_, err = run(t, "suggest", dict, "12345")
	assert.Error(t, err)
}

func TestSizes(t *testing.T) {
	_, err := run(t, "sizes", t.TempDir())
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, "config", "--config", path, "--reset", "--max-words", "5", "--completions")
	require.NoError(t, err)
	assert.Contains(t, out, "max_words:        5\n")
	assert.Contains(t, out, "completions:      true\n")

	out, err = run(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "max_words:        5\n", "update is saved")

	out, err = run(t, "config", "--config", path, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "max_words:        18\n")
	assert.Contains(t, out, "completions:      false\n")
}
