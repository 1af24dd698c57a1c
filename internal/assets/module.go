package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Preamble opens every generated module.
const Preamble = `from module.atom.image import RuleImage
from module.atom.click import RuleClick
from module.atom.long_click import RuleLongClick
from module.atom.swipe import RuleSwipe
from module.atom.ocr import RuleOcr
from module.atom.list import RuleList

# This file was automatically generated by assetgen.
# Don't modify it manually.`

// EmptyBody keeps a module with no rules importable.
const EmptyBody = "\tpass"

// Module accumulates the generated source for one task folder.
type Module struct {
	task string
	body strings.Builder
	n    int
}

// NewModule starts a module whose class is named after task.
func NewModule(task string) *Module {
	return &Module{task: task}
}

// Append adds one extractor fragment.
func (m *Module) Append(fragment string) {
	m.body.WriteString(fragment)
	m.n++
}

// Len is the number of fragments appended.
func (m *Module) Len() int { return m.n }

// ClassName is the generated class name.
func (m *Module) ClassName() string { return m.task + "Assets" }

// Bytes renders the complete module.
func (m *Module) Bytes() []byte {
	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\nclass " + m.ClassName() + ": \n")
	if m.n == 0 {
		sb.WriteString(EmptyBody)
	} else {
		sb.WriteString(m.body.String())
	}
	sb.WriteString("\n\n")
	return []byte(sb.String())
}

// Digest is the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
