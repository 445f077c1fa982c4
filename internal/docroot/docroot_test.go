package docroot

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot(t *testing.T, files map[string]string) (*Root, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	root, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { root.Close() })

	return root, dir
}

func TestResolveFound(t *testing.T) {
	root, _ := newRoot(t, map[string]string{
		"index.html":      "hello world",
		"empty.html":      "",
		"pages/deep.html": "deep",
	})

	res := root.Resolve("index.html")
	assert.Equal(t, Resolution{Name: "index.html", Found: true, Size: 11}, res)

	res = root.Resolve("empty.html")
	assert.True(t, res.Found)
	assert.Equal(t, int64(0), res.Size)

	res = root.Resolve("pages/deep.html")
	assert.True(t, res.Found)
	assert.Equal(t, int64(4), res.Size)
}

func TestResolveNotFound(t *testing.T) {
	root, _ := newRoot(t, map[string]string{
		"pages/deep.html": "deep",
	})

	for _, name := range []string{
		"missing.html",
		"",
		"pages",              // directory
		"../outside.html",    // traversal
		"pages/../../x.html", // traversal after a real segment
		"/etc/passwd",        // absolute
	} {
		res := root.Resolve(name)
		assert.False(t, res.Found, "name %q", name)
		assert.Equal(t, int64(0), res.Size, "name %q", name)
		assert.Equal(t, name, res.Name)
	}
}

func TestResolveSeesChanges(t *testing.T) {
	root, dir := newRoot(t, nil)

	assert.False(t, root.Resolve("late.html").Found)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.html"), []byte("now here"), 0o644))
	res := root.Resolve("late.html")
	assert.True(t, res.Found)
	assert.Equal(t, int64(8), res.Size)

	require.NoError(t, os.Remove(filepath.Join(dir, "late.html")))
	assert.False(t, root.Resolve("late.html").Found)
}

func TestResolveSymlinkEscape(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.html")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	root, dir := newRoot(t, nil)
	if err := os.Symlink(outside, filepath.Join(dir, "link.html")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	assert.False(t, root.Resolve("link.html").Found)
	_, err := root.Open("link.html")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	root, _ := newRoot(t, map[string]string{"404.html": "not found"})

	f, err := root.Open("404.html")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "not found", string(data))

	_, err = root.Open("../404.html")
	assert.ErrorIs(t, err, ErrNotLocal)

	_, err = root.Open("nope.html")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenMissingDir(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
