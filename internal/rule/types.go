package rule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which rule construct a JSON file encodes.
type Kind int

const (
	KindUnknown Kind = iota
	KindList
	KindImage
	KindClick
	KindLongClick
	KindSwipe
	KindOcr
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindList:      "list",
	KindImage:     "image",
	KindClick:     "click",
	KindLongClick: "long_click",
	KindSwipe:     "swipe",
	KindOcr:       "ocr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds lists every classifiable kind in classification priority order.
func Kinds() []Kind {
	return []Kind{KindList, KindImage, KindClick, KindLongClick, KindSwipe, KindOcr}
}

// Field names used by the rule JSON format.
const (
	FieldDescription = "description"
	FieldItemName    = "itemName"
	FieldRoiFront    = "roiFront"
	FieldRoiBack     = "roiBack"
	FieldImageName   = "imageName"
	FieldThreshold   = "threshold"
	FieldMethod      = "method"
	FieldDuration    = "duration"
	FieldMode        = "mode"
	FieldKeyword     = "keyword"
	FieldName        = "name"
	FieldDirection   = "direction"
	FieldType        = "type"
	FieldList        = "list"
)

var baseFields = []string{FieldDescription, FieldItemName, FieldRoiFront, FieldRoiBack}

// RequiredFields returns the fields every entry of the given kind must carry.
// For KindList these are the group fields; list items need ListItemFields.
func RequiredFields(k Kind) []string {
	switch k {
	case KindImage:
		return append(append([]string{}, baseFields...), FieldImageName, FieldThreshold, FieldMethod)
	case KindClick:
		return append([]string{}, baseFields...)
	case KindLongClick:
		return append(append([]string{}, baseFields...), FieldDuration)
	case KindSwipe:
		return append(append([]string{}, baseFields...), FieldMode)
	case KindOcr:
		return append(append([]string{}, baseFields...), FieldMode, FieldMethod, FieldKeyword)
	case KindList:
		return []string{FieldName, FieldDescription, FieldDirection, FieldType, FieldRoiBack, FieldList}
	}
	return nil
}

// ListItemFields are required on every item of a list group.
var ListItemFields = []string{FieldItemName, FieldRoiFront}

// Shape is the top-level JSON shape of a rule file.
type Shape int

const (
	ShapeSequence Shape = iota + 1
	ShapeMapping
)

// Entry is one rule entry. It stays a map so the field-count heuristics
// see exactly the keys the author wrote.
type Entry map[string]any

// Has reports whether the entry carries the field.
func (e Entry) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Value renders a field as it should appear in generated source.
func (e Entry) Value(field string) (string, bool) {
	v, ok := e[field]
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Missing returns the fields from the list that the entry lacks.
func (e Entry) Missing(fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !e.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// File is a parsed rule file.
type File struct {
	Path  string // file path as discovered
	Dir   string // slash-separated directory relative to the project root
	Shape Shape

	Entries []any // sequence shape; elements are Entry when they decoded as objects
	Group   Entry // mapping shape
}

// Empty reports whether the document holds no entries at all.
func (f *File) Empty() bool {
	switch f.Shape {
	case ShapeSequence:
		return len(f.Entries) == 0
	case ShapeMapping:
		return len(f.Group) == 0
	}
	return true
}

// First returns the first entry of a sequence file.
func (f *File) First() (Entry, bool) {
	if f.Shape != ShapeSequence || len(f.Entries) == 0 {
		return nil, false
	}
	e, ok := f.Entries[0].(Entry)
	return e, ok
}

// ParseError reports a file that is not valid JSON or whose top level is
// neither an array nor an object.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a rule file. dir is the slash-separated directory of the
// file relative to the project root, used for generated file paths.
func Parse(path, dir string, data []byte) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unexpected data after top-level value")}
	}

	f := &File{Path: path, Dir: dir}
	switch v := raw.(type) {
	case []any:
		f.Shape = ShapeSequence
		f.Entries = make([]any, len(v))
		for i, item := range v {
			if m, ok := item.(map[string]any); ok {
				f.Entries[i] = Entry(m)
			} else {
				f.Entries[i] = item
			}
		}
	case map[string]any:
		f.Shape = ShapeMapping
		f.Group = Entry(v)
	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("top level is %s, not an array or object", jsonType(raw))}
	}
	return f, nil
}

// FormatValue renders a decoded JSON value the way the rule classes expect
// it in generated Python.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case json.Number:
		return formatNumber(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case Entry:
		return FormatValue(map[string]any(t))
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// formatNumber keeps integers verbatim and normalizes floats, so 0.80 and
// 0.8 produce the same literal.
func formatNumber(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return s
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
