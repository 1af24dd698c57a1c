// Package watch recompiles task folders when their rule files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/batch"
	"github.com/sbenjam1n/assetgen/internal/config"
)

// DefaultDebounce is how long a task must stay quiet before it is rebuilt.
const DefaultDebounce = 500 * time.Millisecond

// Watcher rebuilds the assets module of every task folder whose rule files
// are created, written, removed or renamed.
type Watcher struct {
	cfg      *config.Config
	driver   *batch.Driver
	log      *zap.Logger
	debounce time.Duration
	newRunID func() string

	watcher *fsnotify.Watcher
	pending map[string]time.Time
}

// New creates a Watcher. newRunID labels every rebuild.
func New(cfg *config.Config, driver *batch.Driver, log *zap.Logger, newRunID func() string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		cfg:      cfg,
		driver:   driver,
		log:      log,
		debounce: DefaultDebounce,
		newRunID: newRunID,
		watcher:  fw,
		pending:  make(map[string]time.Time),
	}, nil
}

// SetDebounce changes the quiet period.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run watches until ctx is done. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	root := w.cfg.TasksRoot()
	if err := w.addTree(root); err != nil {
		return err
	}
	w.log.Info("watching rule files", zap.String("root", root))

	ticker := time.NewTicker(max(w.debounce/5, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", zap.Error(err))

		case now := <-ticker.C:
			if dirs := w.due(now); len(dirs) > 0 {
				w.driver.RunTasks(ctx, w.newRunID(), dirs)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warn("watch new folder", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}
	if filepath.Ext(event.Name) != assets.RuleFileExt {
		return
	}

	task := TaskFor(w.cfg.TasksRoot(), w.cfg.ComponentFolder, event.Name)
	if task == "" {
		return
	}
	if rel, err := filepath.Rel(task, event.Name); err == nil &&
		w.cfg.Exclude != "" && strings.Contains(filepath.ToSlash(rel), w.cfg.Exclude) {
		return
	}

	w.log.Debug("rule file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	w.pending[task] = time.Now()
}

// due removes and returns the tasks quiet for at least the debounce period.
func (w *Watcher) due(now time.Time) []string {
	var dirs []string
	for dir, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			dirs = append(dirs, dir)
			delete(w.pending, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// TaskFor maps a path below root to the task folder that owns it, or ""
// when the path is not inside a task folder. Folders under component are
// tasks of their own.
func TaskFor(root, component, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." {
		return ""
	}
	if component != "" && parts[0] == component {
		if len(parts) < 3 {
			return ""
		}
		return filepath.Join(root, parts[0], parts[1])
	}
	return filepath.Join(root, parts[0])
}
