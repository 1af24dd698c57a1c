// Package batch runs the asset compiler over every task folder of a project.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/config"
	"github.com/sbenjam1n/assetgen/internal/extract"
)

// Recorder receives every task outcome, e.g. the run ledger.
type Recorder interface {
	Record(ctx context.Context, runID string, res *assets.Result, err error) error
}

// TaskResult is the outcome of one task folder.
type TaskResult struct {
	Dir      string
	Result   *assets.Result
	Err      error
	Duration time.Duration
}

// Report collects the outcome of a batch run, in task discovery order.
type Report struct {
	RunID string
	Tasks []TaskResult
}

// Failed returns the tasks that did not write their module.
func (r *Report) Failed() []TaskResult {
	var failed []TaskResult
	for _, t := range r.Tasks {
		if t.Err != nil {
			failed = append(failed, t)
		}
	}
	return failed
}

// Err joins every task error, nil when all tasks succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, t := range r.Failed() {
		errs = append(errs, t.Err)
	}
	return errors.Join(errs...)
}

// Driver discovers task folders and compiles them concurrently.
type Driver struct {
	cfg      *config.Config
	log      *zap.Logger
	registry extract.Registry
	cache    *assets.FragmentCache
	recorder Recorder
}

// Option customizes a Driver.
type Option func(*Driver)

// WithCache shares a fragment cache across runs.
func WithCache(c *assets.FragmentCache) Option {
	return func(d *Driver) { d.cache = c }
}

// WithRecorder reports every task outcome to r.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) { d.recorder = r }
}

// WithRegistry replaces the default extractor registry.
func WithRegistry(r extract.Registry) Option {
	return func(d *Driver) { d.registry = r }
}

// New creates a Driver.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{cfg: cfg, log: log, registry: extract.DefaultRegistry()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tasks lists the task folders: the immediate subdirectories of the tasks
// root except the component folder, plus the component folder's immediate
// subdirectories.
func (d *Driver) Tasks() ([]string, error) {
	root := d.cfg.TasksRoot()
	top, err := assets.SubDirs(root)
	if err != nil {
		return nil, fmt.Errorf("list task folders in %s: %w", root, err)
	}

	var tasks []string
	hasComponent := false
	for _, dir := range top {
		if d.cfg.ComponentFolder != "" && filepath.Base(dir) == d.cfg.ComponentFolder {
			hasComponent = true
			continue
		}
		tasks = append(tasks, dir)
	}

	if hasComponent {
		nested, err := assets.SubDirs(filepath.Join(root, d.cfg.ComponentFolder))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("list component folders: %w", err)
		}
		tasks = append(tasks, nested...)
	}
	return tasks, nil
}

// Select resolves task names (folder names, or paths relative to the tasks
// root such as Component/Shiki) to task folders.
func (d *Driver) Select(names []string) ([]string, error) {
	all, err := d.Tasks()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(all))
	for _, dir := range all {
		byName[filepath.Base(dir)] = dir
		if rel, err := filepath.Rel(d.cfg.TasksRoot(), dir); err == nil {
			byName[filepath.ToSlash(rel)] = dir
		}
	}

	var dirs []string
	for _, name := range names {
		dir, ok := byName[filepath.ToSlash(name)]
		if !ok {
			return nil, fmt.Errorf("unknown task %q", name)
		}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Compiler builds the compiler for one task folder.
func (d *Driver) Compiler(dir string) *assets.Compiler {
	return assets.New(dir, assets.Options{
		ProjectRoot: d.cfg.ProjectRoot,
		AssetsFile:  d.cfg.AssetsFile,
		Exclude:     d.cfg.Exclude,
		Registry:    d.registry,
		Logger:      d.log,
		Cache:       d.cache,
	})
}

// Run compiles every discovered task folder.
func (d *Driver) Run(ctx context.Context, runID string) (*Report, error) {
	dirs, err := d.Tasks()
	if err != nil {
		return nil, err
	}
	return d.RunTasks(ctx, runID, dirs), nil
}

// RunTasks compiles dirs on a pool of cfg.Workers goroutines. Each task
// fails on its own; a failure never cancels the others. Tasks not yet
// started when ctx is cancelled report ctx.Err().
func (d *Driver) RunTasks(ctx context.Context, runID string, dirs []string) *Report {
	report := &Report{RunID: runID, Tasks: make([]TaskResult, len(dirs))}
	d.log.Info("extracting assets", zap.String("run", runID), zap.Int("tasks", len(dirs)), zap.Int("workers", d.cfg.Workers))

	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			report.Tasks[i] = d.runOne(ctx, runID, dir)
			return nil
		})
	}
	_ = g.Wait()

	d.log.Info("asset extraction finished",
		zap.String("run", runID),
		zap.Int("tasks", len(dirs)),
		zap.Int("failed", len(report.Failed())),
	)
	return report
}

func (d *Driver) runOne(ctx context.Context, runID, dir string) TaskResult {
	tr := TaskResult{Dir: dir}
	if err := ctx.Err(); err != nil {
		tr.Err = err
		return tr
	}

	start := time.Now()
	res, err := d.Compiler(dir).Compile(ctx)
	tr.Result, tr.Err, tr.Duration = res, err, time.Since(start)

	if err != nil {
		d.log.Error("task failed", zap.String("task", filepath.Base(dir)), zap.Error(err))
	}
	if d.recorder != nil {
		if recErr := d.recorder.Record(ctx, runID, res, err); recErr != nil {
			d.log.Warn("record task result", zap.String("task", filepath.Base(dir)), zap.Error(recErr))
		}
	}
	return tr
}
