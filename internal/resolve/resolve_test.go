package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctagard/inspect/internal/errors"
)

func writeScript(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("console.log('hi')\n"), 0o755))
	return path
}

// TestResolve_AbsolutePath verifies that an existing path is used directly.
func TestResolve_AbsolutePath(t *testing.T) {
	script := writeScript(t, t.TempDir(), "app.js")

	got, err := NewResolver(nil).Resolve(script)
	require.NoError(t, err)
	assert.Equal(t, script, got)
}

// TestResolve_BareNameOnSearchPath verifies that bare names are looked up
// in the search path, first match wins.
func TestResolve_BareNameOnSearchPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeScript(t, second, "tool")
	want := writeScript(t, first, "tool")

	got, err := NewResolver([]string{"", first, second}).Resolve("tool")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestResolve_SkipsDirectories verifies that a directory matching the name
// is not mistaken for the script.
func TestResolve_SkipsDirectories(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(first, "tool"), 0o755))
	want := writeScript(t, second, "tool")

	got, err := NewResolver([]string{first, second}).Resolve("tool")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestResolve_NotFound verifies that unknown targets fail with
// TARGET_NOT_FOUND and report the directories searched.
func TestResolve_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := NewResolver([]string{dir}).Resolve("does-not-exist-anywhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeTargetNotFound))
	assert.Equal(t, []string{dir}, errors.FromError(err).Details["searchPath"])

	_, err = NewResolver([]string{dir}).Resolve(filepath.Join(dir, "missing.js"))
	assert.True(t, errors.Is(err, errors.CodeTargetNotFound))
}

func TestResolve_EmptyTarget(t *testing.T) {
	_, err := NewResolver(nil).Resolve("")
	assert.True(t, errors.Is(err, errors.CodeMissingParameter))
}

func TestIsPath(t *testing.T) {
	assert.True(t, IsPath("./app.js"))
	assert.True(t, IsPath("scripts/app.js"))
	assert.True(t, IsPath(filepath.Join(string(filepath.Separator), "app.js")))
	assert.False(t, IsPath("app.js"))
}

func TestSplitList(t *testing.T) {
	list := "a" + string(filepath.ListSeparator) + string(filepath.ListSeparator) + "b"
	assert.Equal(t, []string{"a", "b"}, SplitList(list))
	assert.Nil(t, SplitList(""))
}

func TestSearchPath_ReturnsCopy(t *testing.T) {
	r := NewResolver([]string{"a", "", "b"})
	dirs := r.SearchPath()
	assert.Equal(t, []string{"a", "b"}, dirs)

	dirs[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, r.SearchPath())
}
