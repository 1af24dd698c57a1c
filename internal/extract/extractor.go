// Package extract turns classified rule files into generated declaration
// fragments. Each rule kind has one Extractor; the compiler picks it from a
// Registry using the classifier's result.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sbenjam1n/assetgen/internal/rule"
)

// Extractor renders every entry of a rule file as source declarations.
type Extractor interface {
	Kind() rule.Kind
	Extract(f *rule.File) (string, error)
}

// ErrMalformedList marks list groups that cannot be rendered at all. Unlike
// other extraction errors it aborts the whole task.
var ErrMalformedList = errors.New("malformed list input")

// ShapeError reports an entry that lacks the fields its kind requires.
type ShapeError struct {
	Path    string
	Kind    rule.Kind
	Index   int // entry index, -1 for the top-level object
	Missing []string
	Reason  string
}

func (e *ShapeError) Error() string {
	where := "top level"
	if e.Index >= 0 {
		where = fmt.Sprintf("entry %d", e.Index)
	}
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s rule %s: %s missing %s", e.Kind, e.Path, where, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s rule %s: %s %s", e.Kind, e.Path, where, e.Reason)
}

// Registry maps each kind to its extractor.
type Registry map[rule.Kind]Extractor

// DefaultRegistry holds the six built-in extractors.
func DefaultRegistry() Registry {
	r := Registry{}
	r.Register(Image{})
	r.Register(Click{})
	r.Register(LongClick{})
	r.Register(Swipe{})
	r.Register(Ocr{})
	r.Register(List{})
	return r
}

// Register adds or replaces the extractor for x.Kind().
func (r Registry) Register(x Extractor) {
	r[x.Kind()] = x
}

// Lookup returns the extractor for k.
func (r Registry) Lookup(k rule.Kind) (Extractor, bool) {
	x, ok := r[k]
	return x, ok
}

func header(title string) string {
	return "\n\n\t# " + title + " Rule Assets\n"
}

func comment(e rule.Entry) string {
	desc, _ := e.Value(rule.FieldDescription)
	return "\t# " + desc + " \n"
}

// sourceDir is the folder generated paths are rooted at.
func sourceDir(f *rule.File) string {
	if f.Dir == "" {
		return "."
	}
	return f.Dir
}
