// Package assets compiles the rule files of one task folder into a single
// generated module.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sbenjam1n/assetgen/internal/extract"
	"github.com/sbenjam1n/assetgen/internal/rule"
)

// ErrEmptyResult is logged when a task folder yields no classified rule file.
var ErrEmptyResult = errors.New("no rule assets found")

// State is the stage a compiler has reached.
type State int

const (
	StateInitialized State = iota
	StateScanning
	StateExtracting
	StateWritten
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateScanning:
		return "scanning"
	case StateExtracting:
		return "extracting"
	case StateWritten:
		return "written"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options configures a Compiler. Zero values fall back to the defaults
// noted on each field.
type Options struct {
	ProjectRoot string           // generated paths are relative to it; default: parent of the tasks folder
	AssetsFile  string           // default "assets.py"
	Exclude     string           // path marker to skip; empty disables the filter
	Registry    extract.Registry // default extract.DefaultRegistry()
	Logger      *zap.Logger      // default no-op
	Cache       *FragmentCache   // optional
}

// Skip records a rule file that contributed nothing.
type Skip struct {
	File   string
	Reason string
	Err    error
}

// Result summarizes one compilation.
type Result struct {
	Task      string
	Output    string
	Files     int
	Fragments int
	Kinds     map[rule.Kind]int
	Skipped   []Skip
	Digest    string
}

// Compiler turns a task folder's rule files into its generated module.
type Compiler struct {
	taskDir string
	task    string
	opts    Options
	state   State
	log     *zap.Logger
}

// New prepares a compiler for taskDir.
func New(taskDir string, opts Options) *Compiler {
	if opts.AssetsFile == "" {
		opts.AssetsFile = "assets.py"
	}
	if opts.ProjectRoot == "" {
		opts.ProjectRoot = filepath.Dir(filepath.Dir(taskDir))
	}
	if opts.Registry == nil {
		opts.Registry = extract.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	task := filepath.Base(taskDir)
	return &Compiler{
		taskDir: taskDir,
		task:    task,
		opts:    opts,
		log:     opts.Logger.With(zap.String("task", task)),
	}
}

// Task is the task folder name.
func (c *Compiler) Task() string { return c.task }

// Output is the path of the generated module.
func (c *Compiler) Output() string { return filepath.Join(c.taskDir, c.opts.AssetsFile) }

// State reports how far the last Compile got.
func (c *Compiler) State() State { return c.state }

// Compile regenerates the task's module from scratch and writes it,
// overwriting any previous output. Broken files are logged and skipped; a
// malformed list group aborts the task before anything is written.
func (c *Compiler) Compile(ctx context.Context) (*Result, error) {
	c.state = StateScanning
	res := &Result{Task: c.task, Output: c.Output(), Kinds: map[rule.Kind]int{}}

	files, err := ScanRuleFiles(c.taskDir, c.opts.Exclude)
	if err != nil {
		c.state = StateFailed
		return res, fmt.Errorf("scan task %s: %w", c.task, err)
	}
	res.Files = len(files)

	c.state = StateExtracting
	module := NewModule(c.task)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			c.state = StateFailed
			return res, err
		}
		kind, fragment, skip, err := c.compileFile(file)
		if err != nil {
			c.state = StateFailed
			return res, fmt.Errorf("compile task %s: %w", c.task, err)
		}
		if skip != nil {
			res.Skipped = append(res.Skipped, *skip)
			continue
		}
		module.Append(fragment)
		res.Kinds[kind]++
	}
	res.Fragments = module.Len()

	if module.Len() == 0 {
		c.log.Error("task has no rule assets", zap.Error(ErrEmptyResult), zap.String("dir", c.taskDir))
	}

	data := module.Bytes()
	if err := os.WriteFile(res.Output, data, 0644); err != nil {
		c.state = StateFailed
		return res, fmt.Errorf("write %s: %w", res.Output, err)
	}
	res.Digest = Digest(data)
	c.state = StateWritten

	c.log.Debug("wrote assets",
		zap.String("output", res.Output),
		zap.Int("files", res.Files),
		zap.Int("fragments", res.Fragments),
	)
	return res, nil
}

// compileFile returns the file's fragment, or a skip for per-file problems.
// A non-nil error aborts the task.
func (c *Compiler) compileFile(path string) (rule.Kind, string, *Skip, error) {
	log := c.log.With(zap.String("file", path))

	info, err := os.Stat(path)
	if err != nil {
		log.Error("stat rule file", zap.Error(err))
		return rule.KindUnknown, "", &Skip{File: path, Reason: "unreadable", Err: err}, nil
	}
	key := keyFor(path, info)
	if hit, ok := c.opts.Cache.get(key); ok {
		return hit.kind, hit.fragment, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read rule file", zap.Error(err))
		return rule.KindUnknown, "", &Skip{File: path, Reason: "unreadable", Err: err}, nil
	}

	f, err := rule.Parse(path, RelDir(c.opts.ProjectRoot, path), data)
	if err != nil {
		log.Error("parse rule file", zap.Error(err))
		return rule.KindUnknown, "", &Skip{File: path, Reason: "parse error", Err: err}, nil
	}
	if f.Empty() {
		log.Debug("empty rule file")
		return rule.KindUnknown, "", &Skip{File: path, Reason: "empty"}, nil
	}

	cls := rule.Classify(f)
	if !cls.OK() {
		log.Error("unclassified rule file", zap.String("reason", cls.Reason))
		return rule.KindUnknown, "", &Skip{File: path, Reason: "unclassified: " + cls.Reason}, nil
	}
	log.Debug("classified rule file", zap.Stringer("kind", cls.Kind), zap.String("reason", cls.Reason))

	x, ok := c.opts.Registry.Lookup(cls.Kind)
	if !ok {
		log.Error("no extractor for kind", zap.Stringer("kind", cls.Kind))
		return cls.Kind, "", &Skip{File: path, Reason: "no extractor for " + cls.Kind.String()}, nil
	}

	fragment, err := x.Extract(f)
	if err != nil {
		if errors.Is(err, extract.ErrMalformedList) {
			log.Error("malformed list rule", zap.Error(err))
			return cls.Kind, "", nil, err
		}
		log.Error("invalid rule file", zap.Stringer("kind", cls.Kind), zap.Error(err))
		return cls.Kind, "", &Skip{File: path, Reason: "invalid " + cls.Kind.String(), Err: err}, nil
	}

	c.opts.Cache.put(key, cachedFragment{kind: cls.Kind, fragment: fragment})
	return cls.Kind, fragment, nil, nil
}
