package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/config"
	"github.com/sbenjam1n/assetgen/internal/extract"
)

const clickJSON = `[{"itemName": "ok", "roiFront": "1,1,1,1", "roiBack": "2,2,2,2", "description": "ok"}]`

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func project(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"Orochi", "Daily", "Component/Shiki", "Component/Buy", "Empty"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "tasks", filepath.FromSlash(dir)), 0755))
	}
	writeFile(t, filepath.Join(root, "tasks", "Orochi", "click.json"), clickJSON)
	writeFile(t, filepath.Join(root, "tasks", "Daily", "click.json"), clickJSON)
	writeFile(t, filepath.Join(root, "tasks", "Component", "Shiki", "click.json"), clickJSON)
	writeFile(t, filepath.Join(root, "tasks", "Component", "Buy", "click.json"), clickJSON)
	writeFile(t, filepath.Join(root, "tasks", "notes.txt"), "not a task")
	return config.Default(root)
}

func names(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Base(d)
	}
	return out
}

func TestTasks(t *testing.T) {
	cfg := project(t)
	d := New(cfg, nil)

	dirs, err := d.Tasks()
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily", "Empty", "Orochi", "Buy", "Shiki"}, names(dirs))
	assert.NotContains(t, names(dirs), "Component")
}

func TestTasksWithoutComponentFolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tasks", "Only"), 0755))
	d := New(config.Default(root), nil)

	dirs, err := d.Tasks()
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, names(dirs))
}

func TestTasksMissingRoot(t *testing.T) {
	d := New(config.Default(t.TempDir()), nil)
	_, err := d.Tasks()
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	d := New(project(t), nil)

	dirs, err := d.Select([]string{"Orochi", "Component/Shiki"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Orochi", "Shiki"}, names(dirs))

	_, err = d.Select([]string{"Nope"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := project(t)
	d := New(cfg, nil)

	report, err := d.Run(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, report.Tasks, 5)
	assert.NoError(t, report.Err())

	for _, tr := range report.Tasks {
		_, statErr := os.Stat(filepath.Join(tr.Dir, "assets.py"))
		assert.NoError(t, statErr, "missing module for %s", tr.Dir)
	}
	empty, err := os.ReadFile(filepath.Join(cfg.TasksRoot(), "Empty", "assets.py"))
	require.NoError(t, err)
	assert.Contains(t, string(empty), "\tpass")
}

type recorder struct {
	mu   sync.Mutex
	runs map[string]int
	errs int
}

func (r *recorder) Record(_ context.Context, runID string, _ *assets.Result, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[runID]++
	if err != nil {
		r.errs++
	}
	return nil
}

func TestRunFailureIsolated(t *testing.T) {
	cfg := project(t)
	writeFile(t, filepath.Join(cfg.TasksRoot(), "Daily", "grid.json"),
		`{"name": "g", "description": "d", "direction": "h", "type": "t", "roiBack": "0,0,1,1", "list": []}`)

	rec := &recorder{runs: map[string]int{}}
	d := New(cfg, nil, WithRecorder(rec))
	report, err := d.Run(context.Background(), "run-2")
	require.NoError(t, err)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Daily", filepath.Base(failed[0].Dir))
	assert.ErrorIs(t, report.Err(), extract.ErrMalformedList)

	for _, tr := range report.Tasks {
		if filepath.Base(tr.Dir) == "Daily" {
			continue
		}
		assert.NoError(t, tr.Err)
		assert.NotEmpty(t, tr.Result.Digest)
	}
	assert.Equal(t, 5, rec.runs["run-2"])
	assert.Equal(t, 1, rec.errs)
}

func TestRunSingleWorker(t *testing.T) {
	cfg := project(t)
	cfg.Workers = 1
	report, err := New(cfg, nil).Run(context.Background(), "serial")
	require.NoError(t, err)
	assert.Len(t, report.Tasks, 5)
	assert.NoError(t, report.Err())
}

func TestRunCancelled(t *testing.T) {
	cfg := project(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, nil).Run(ctx, "cancelled")
	require.NoError(t, err)
	for _, tr := range report.Tasks {
		assert.ErrorIs(t, tr.Err, context.Canceled)
	}
}
