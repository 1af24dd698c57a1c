package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbenjam1n/assetgen/internal/rule"
)

// List renders a RuleList declaration for a list group. The cell size is
// the truncated mean width and height of the items' roiFront.
type List struct{}

func (List) Kind() rule.Kind { return rule.KindList }

func (List) Extract(f *rule.File) (string, error) {
	if f.Shape != rule.ShapeMapping {
		return "", fmt.Errorf("%w: %s: data must be an object", ErrMalformedList, f.Path)
	}
	g := f.Group

	items, err := listItems(f.Path, g)
	if err != nil {
		return "", err
	}
	if missing := g.Missing(rule.RequiredFields(rule.KindList)); len(missing) > 0 {
		return "", &ShapeError{Path: f.Path, Kind: rule.KindList, Index: -1, Missing: missing}
	}

	var width, height int
	names := make([]string, 0, len(items))
	for i, item := range items {
		roi, _ := item.Value(rule.FieldRoiFront)
		w, h, err := roiSize(roi)
		if err != nil {
			return "", fmt.Errorf("%w: %s: list item %d roiFront %q: %v", ErrMalformedList, f.Path, i, roi, err)
		}
		width += w
		height += h
		name, _ := item.Value(rule.FieldItemName)
		names = append(names, `"`+name+`"`)
	}
	width /= len(items)
	height /= len(items)

	var sb strings.Builder
	sb.WriteString(header("List"))
	sb.WriteString(comment(g))
	fmt.Fprintf(&sb, "\t%s = RuleList(folder=\"./%s\", direction=\"%s\", mode=\"%s\", roi_back=(%s), size=(%d, %d), \n\t\t\t\t\t array=[%s])\n",
		constName("L_", rule.Entry{rule.FieldItemName: g[rule.FieldName]}),
		sourceDir(f),
		field(g, rule.FieldDirection),
		field(g, rule.FieldType),
		field(g, rule.FieldRoiBack),
		width, height,
		strings.Join(names, ", "),
	)
	return sb.String(), nil
}

func listItems(path string, g rule.Entry) ([]rule.Entry, error) {
	raw, ok := g[rule.FieldList]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing %s", ErrMalformedList, path, rule.FieldList)
	}
	seq, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s is not an array", ErrMalformedList, path, rule.FieldList)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: %s: %s is empty", ErrMalformedList, path, rule.FieldList)
	}
	items := make([]rule.Entry, 0, len(seq))
	for i, v := range seq {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: list item %d is not an object", ErrMalformedList, path, i)
		}
		item := rule.Entry(m)
		if missing := item.Missing(rule.ListItemFields); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s: list item %d missing %s", ErrMalformedList, path, i, strings.Join(missing, ", "))
		}
		items = append(items, item)
	}
	return items, nil
}

// roiSize returns the width and height of an "x,y,w,h" region.
func roiSize(roi string) (int, int, error) {
	parts, err := ParseROI(roi)
	if err != nil {
		return 0, 0, err
	}
	return parts[2], parts[3], nil
}

// ParseROI splits an "x,y,w,h" region into its four integers.
func ParseROI(roi string) ([4]int, error) {
	var out [4]int
	parts := strings.Split(roi, ",")
	if len(parts) != 4 {
		return out, fmt.Errorf("want 4 comma-separated values, got %d", len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
