package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, roots []string, opts ...Option) <-chan []string {
	t.Helper()

	batches := make(chan []string, 8)

	opts = append([]Option{WithDebounceDelay(150 * time.Millisecond)}, opts...)
	w, err := New(roots, func(files []string) { batches <- files }, opts...)
	require.NoError(t, err)

	w.Start()
	t.Cleanup(func() { w.Stop() })

	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()

	select {
	case files := <-batches:
		return files
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch reported")
		return nil
	}
}

func TestWatcher_DebouncesDirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, []string{dir})

	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(a, []byte("class A: ...\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("class B: ...\n"), 0o600))

	files := waitBatch(t, batches)
	assert.Equal(t, []string{a, b}, files)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, []string{dir})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package x"), 0o600))

	model := filepath.Join(dir, "model.go")
	require.NoError(t, os.WriteFile(model, []byte("package x"), 0o600))

	assert.Equal(t, []string{model}, waitBatch(t, batches))
}

func TestWatcher_SingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "types.manifest")
	require.NoError(t, os.WriteFile(manifest, []byte("types: []\n"), 0o600))

	batches := startWatcher(t, []string{manifest})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.py"), []byte("x = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(manifest, []byte("types: []\nversion: \"1\"\n"), 0o600))

	assert.Equal(t, []string{manifest}, waitBatch(t, batches))
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	batches := startWatcher(t, []string{dir}, WithExtensions(".py"))

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the event loop time to register the new directory.
	time.Sleep(100 * time.Millisecond)

	mod := filepath.Join(sub, "mod.py")
	require.NoError(t, os.WriteFile(mod, []byte("class M: ...\n"), 0o600))

	files := waitBatch(t, batches)
	assert.Contains(t, files, mod)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, nil)
	assert.Error(t, err)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New([]string{t.TempDir()}, nil)
	require.NoError(t, err)

	w.Start()
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
