// Package tree renders the task folders of a project and the rule kind of
// each rule file as a text tree.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbenjam1n/assetgen/internal/assets"
	"github.com/sbenjam1n/assetgen/internal/rule"
)

// Node is one folder or rule file of the tree view.
type Node struct {
	Name     string
	FullPath string // slash-separated, relative to the tasks root
	Label    string // rule kind or problem, set on rule files only
	Children []*Node
}

// Build scans every task folder and returns a tree of its rule files. Each
// file is labelled with the kind it classifies as, or with why it would be
// skipped.
func Build(tasksRoot, projectRoot, exclude string, tasks []string) (*Node, error) {
	root := &Node{Name: "root"}
	nodes := map[string]*Node{"": root}

	var leaves []leaf
	for _, task := range tasks {
		files, err := assets.ScanRuleFiles(task, exclude)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", task, err)
		}
		for _, file := range files {
			rel, err := filepath.Rel(tasksRoot, file)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, leaf{
				path:  filepath.ToSlash(rel),
				label: Label(file, assets.RelDir(projectRoot, file)),
			})
		}
		// Empty task folders still show up.
		if rel, err := filepath.Rel(tasksRoot, task); err == nil {
			insert(nodes, root, filepath.ToSlash(rel))
		}
	}

	sort.Slice(leaves, func(i, j int) bool { return leaves[i].path < leaves[j].path })
	for _, l := range leaves {
		insert(nodes, root, l.path).Label = l.label
	}
	sortChildren(root)
	return root, nil
}

type leaf struct {
	path  string
	label string
}

func insert(nodes map[string]*Node, root *Node, path string) *Node {
	parts := strings.Split(path, "/")
	current := root
	for i, part := range parts {
		full := strings.Join(parts[:i+1], "/")
		if child, ok := nodes[full]; ok {
			current = child
			continue
		}
		child := &Node{Name: part, FullPath: full}
		current.Children = append(current.Children, child)
		nodes[full] = child
		current = child
	}
	return current
}

func sortChildren(n *Node) {
	sort.Slice(n.Children, func(i, j int) bool { return n.Children[i].Name < n.Children[j].Name })
	for _, c := range n.Children {
		sortChildren(c)
	}
}

// Label describes how a rule file would be compiled.
func Label(path, dir string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unreadable"
	}
	f, err := rule.Parse(path, dir, data)
	if err != nil {
		return "invalid json"
	}
	c := rule.Classify(f)
	if !c.OK() {
		return "unclassified"
	}
	return c.Kind.String()
}

// Format produces a text tree view from a Node.
func Format(node *Node, prefix string, isLast bool) string {
	var sb strings.Builder
	if node.Name != "root" {
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		sb.WriteString(prefix + connector + node.Name)
		if node.Label != "" {
			sb.WriteString(fmt.Sprintf("    [%s]", node.Label))
		}
		sb.WriteString("\n")
	}

	childPrefix := prefix
	if node.Name != "root" {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.Children {
		sb.WriteString(Format(child, childPrefix, i == len(node.Children)-1))
	}
	return sb.String()
}
