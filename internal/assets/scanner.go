package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RuleFileExt is the extension of rule description files.
const RuleFileExt = ".json"

// ScanRuleFiles returns every rule file under taskDir in lexical order.
// Any path whose task-relative form contains exclude is skipped, directories
// included. An empty exclude disables the filter.
func ScanRuleFiles(taskDir, exclude string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(taskDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(taskDir, path)
		if relErr != nil {
			rel = path
		}
		if rel != "." && isExcluded(filepath.ToSlash(rel), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != RuleFileExt {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func isExcluded(relPath, exclude string) bool {
	return exclude != "" && strings.Contains(relPath, exclude)
}

// RelDir returns the slash-separated directory of file relative to root,
// which is how generated modules refer to image folders.
func RelDir(root, file string) string {
	dir := filepath.Dir(file)
	if absRoot, err := filepath.Abs(root); err == nil {
		if absDir, err := filepath.Abs(dir); err == nil {
			if rel, err := filepath.Rel(absRoot, absDir); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(dir)
}

// SubDirs lists the immediate subdirectories of dir, sorted by name.
func SubDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs, nil
}
