package watch

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbenjam1n/assetgen/internal/config"
)

func TestTaskFor(t *testing.T) {
	root := filepath.Join("proj", "tasks")
	cases := []struct {
		name string
		path string
		want string
	}{
		{"top level task", filepath.Join(root, "Orochi", "res", "a.json"), filepath.Join(root, "Orochi")},
		{"file in task root", filepath.Join(root, "Orochi", "a.json"), filepath.Join(root, "Orochi")},
		{"component task", filepath.Join(root, "Component", "Shiki", "b.json"), filepath.Join(root, "Component", "Shiki")},
		{"component root file", filepath.Join(root, "Component", "c.json"), ""},
		{"tasks root file", filepath.Join(root, "x.json"), ""},
		{"outside root", filepath.Join("proj", "other", "x.json"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TaskFor(root, "Component", tc.path))
		})
	}
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	cfg := config.Default(t.TempDir())
	w, err := New(cfg, nil, nil, func() string { return "run" })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	return w
}

func TestHandleQueuesTask(t *testing.T) {
	w := newTestWatcher(t)
	root := w.cfg.TasksRoot()

	w.handle(fsnotify.Event{Name: filepath.Join(root, "Orochi", "res", "a.json"), Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: filepath.Join(root, "Orochi", "res", "a.png"), Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: filepath.Join(root, "Orochi", "temp", "b.json"), Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: filepath.Join(root, "Exploration", "c.json"), Op: fsnotify.Chmod})

	assert.Len(t, w.pending, 1)
	assert.Contains(t, w.pending, filepath.Join(root, "Orochi"))
}

func TestDueDebounces(t *testing.T) {
	w := newTestWatcher(t)
	w.SetDebounce(time.Second)

	now := time.Now()
	w.pending["b"] = now.Add(-2 * time.Second)
	w.pending["a"] = now.Add(-time.Second)
	w.pending["c"] = now

	assert.Equal(t, []string{"a", "b"}, w.due(now))
	assert.Len(t, w.pending, 1)
	assert.Empty(t, w.due(now))
}
