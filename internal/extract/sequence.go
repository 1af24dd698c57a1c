package extract

import (
	"fmt"
	"strings"

	"github.com/sbenjam1n/assetgen/internal/rule"
)

// entries checks that f is a sequence of objects carrying the fields kind k
// requires.
func entries(f *rule.File, k rule.Kind) ([]rule.Entry, error) {
	if f.Shape != rule.ShapeSequence {
		return nil, &ShapeError{Path: f.Path, Kind: k, Index: -1, Reason: "is not an array"}
	}
	required := rule.RequiredFields(k)
	out := make([]rule.Entry, 0, len(f.Entries))
	for i, item := range f.Entries {
		e, ok := item.(rule.Entry)
		if !ok {
			return nil, &ShapeError{Path: f.Path, Kind: k, Index: i, Reason: "is not an object"}
		}
		if missing := e.Missing(required); len(missing) > 0 {
			return nil, &ShapeError{Path: f.Path, Kind: k, Index: i, Missing: missing}
		}
		out = append(out, e)
	}
	return out, nil
}

// render writes the section header followed by a comment and a declaration
// per entry.
func render(f *rule.File, k rule.Kind, title string, declare func(e rule.Entry) string) (string, error) {
	list, err := entries(f, k)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(header(title))
	for _, e := range list {
		sb.WriteString(comment(e))
		sb.WriteString(declare(e))
	}
	return sb.String(), nil
}

// field returns a field already checked by entries.
func field(e rule.Entry, name string) string {
	v, _ := e.Value(name)
	return v
}

func constName(prefix string, e rule.Entry) string {
	return prefix + rule.TransformName(field(e, rule.FieldItemName))
}

// Image renders RuleImage declarations.
type Image struct{}

func (Image) Kind() rule.Kind { return rule.KindImage }

func (Image) Extract(f *rule.File) (string, error) {
	dir := sourceDir(f)
	return render(f, rule.KindImage, "Image", func(e rule.Entry) string {
		return fmt.Sprintf("\t%s = RuleImage(roi_front=(%s), roi_back=(%s), threshold=%s, method=\"%s\", file=\"./%s/%s\")\n",
			constName("I_", e),
			field(e, rule.FieldRoiFront),
			field(e, rule.FieldRoiBack),
			field(e, rule.FieldThreshold),
			field(e, rule.FieldMethod),
			dir,
			field(e, rule.FieldImageName),
		)
	})
}

// Click renders RuleClick declarations.
type Click struct{}

func (Click) Kind() rule.Kind { return rule.KindClick }

func (Click) Extract(f *rule.File) (string, error) {
	return render(f, rule.KindClick, "Click", func(e rule.Entry) string {
		return fmt.Sprintf("\t%s = RuleClick(roi_front=(%s), roi_back=(%s), name=\"%s\")\n",
			constName("C_", e),
			field(e, rule.FieldRoiFront),
			field(e, rule.FieldRoiBack),
			field(e, rule.FieldItemName),
		)
	})
}

// LongClick renders RuleLongClick declarations.
type LongClick struct{}

func (LongClick) Kind() rule.Kind { return rule.KindLongClick }

func (LongClick) Extract(f *rule.File) (string, error) {
	return render(f, rule.KindLongClick, "Long Click", func(e rule.Entry) string {
		return fmt.Sprintf("\t%s = RuleLongClick(roi_front=(%s), roi_back=(%s), duration=%s, name=\"%s\")\n",
			constName("L_", e),
			field(e, rule.FieldRoiFront),
			field(e, rule.FieldRoiBack),
			field(e, rule.FieldDuration),
			field(e, rule.FieldItemName),
		)
	})
}

// Swipe renders RuleSwipe declarations.
type Swipe struct{}

func (Swipe) Kind() rule.Kind { return rule.KindSwipe }

func (Swipe) Extract(f *rule.File) (string, error) {
	return render(f, rule.KindSwipe, "Swipe", func(e rule.Entry) string {
		return fmt.Sprintf("\t%s = RuleSwipe(roi_front=(%s), roi_back=(%s), mode=\"%s\", name=\"%s\")\n",
			constName("S_", e),
			field(e, rule.FieldRoiFront),
			field(e, rule.FieldRoiBack),
			field(e, rule.FieldMode),
			field(e, rule.FieldItemName),
		)
	})
}

// Ocr renders RuleOcr declarations. roiFront becomes the read region and
// roiBack the search area.
type Ocr struct{}

func (Ocr) Kind() rule.Kind { return rule.KindOcr }

func (Ocr) Extract(f *rule.File) (string, error) {
	return render(f, rule.KindOcr, "Ocr", func(e rule.Entry) string {
		return fmt.Sprintf("\t%s = RuleOcr(roi=(%s), area=(%s), mode=\"%s\", method=\"%s\", keyword=\"%s\", name=\"%s\")\n",
			constName("O_", e),
			field(e, rule.FieldRoiFront),
			field(e, rule.FieldRoiBack),
			field(e, rule.FieldMode),
			field(e, rule.FieldMethod),
			field(e, rule.FieldKeyword),
			field(e, rule.FieldItemName),
		)
	})
}
