package validator

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sbenjam1n/assetgen/internal/extract"
	"github.com/sbenjam1n/assetgen/internal/rule"
)

// Result codes.
const (
	CodeOK           = 0
	CodeParse        = 1
	CodeUnclassified = 2
	CodeMissingField = 3
	CodeBadROI       = 4
)

// ValidationResult is the outcome of validating one rule file.
type ValidationResult struct {
	File    string             `json:"file"`
	Kind    rule.Kind          `json:"kind"`
	Tier    int                `json:"tier"`
	Passed  bool               `json:"passed"`
	Code    int                `json:"code"`
	Message string             `json:"message"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes a single validation check result.
type ValidationDetail struct {
	Check    string `json:"check"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
	Fix      string `json:"fix,omitempty"` // MANDATORY for non-passing checks
}

func (r *ValidationResult) fail(code int, d ValidationDetail) {
	d.Passed = false
	if r.Passed {
		r.Passed = false
		r.Code = code
		r.Message = d.Check + " failed"
	}
	r.Details = append(r.Details, d)
}

// ValidateFile reads and validates a rule file. dir is its slash-separated
// directory relative to the project root.
func ValidateFile(path, dir string) *ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		r := &ValidationResult{File: path, Passed: true}
		r.fail(CodeParse, ValidationDetail{
			Check:    "readable",
			Expected: "readable file",
			Got:      err.Error(),
			Fix:      fmt.Sprintf("Check the permissions of %s.", path),
		})
		return r
	}
	f, err := rule.Parse(path, dir, data)
	if err != nil {
		r := &ValidationResult{File: path, Passed: true}
		r.fail(CodeParse, ValidationDetail{
			Check:    "json",
			Expected: "a JSON array of entries or a list object",
			Got:      unwrapParse(err),
			Fix:      fmt.Sprintf("Fix the JSON syntax of %s.", path),
		})
		return r
	}
	return Validate(f)
}

// Validate runs Tier 0 and, when it passes, Tier 1.
func Validate(f *rule.File) *ValidationResult {
	if r := Tier0Structural(f); !r.Passed {
		return r
	}
	return Tier1Fields(f)
}

// Tier0Structural checks the document can be classified.
func Tier0Structural(f *rule.File) *ValidationResult {
	r := &ValidationResult{File: f.Path, Tier: 0, Passed: true}
	if f.Empty() {
		r.Message = "empty file, skipped by the generator"
		return r
	}

	cls := rule.Classify(f)
	r.Kind = cls.Kind
	if !cls.OK() {
		r.fail(CodeUnclassified, ValidationDetail{
			Check:    "classification",
			Expected: "list object with name, or entries matching image/click/long click/swipe/ocr",
			Got:      cls.Reason,
			Fix:      "Use the field set of one rule kind. Click entries have exactly 4 fields, swipe entries exactly 5 including mode.",
		})
		return r
	}
	r.Message = fmt.Sprintf("Tier 0 passed: %s (%s)", cls.Kind, cls.Reason)
	return r
}

// Tier1Fields checks required fields and ROI syntax for the file's kind.
func Tier1Fields(f *rule.File) *ValidationResult {
	r := &ValidationResult{File: f.Path, Tier: 1, Passed: true}
	if f.Empty() {
		r.Message = "empty file, skipped by the generator"
		return r
	}
	r.Kind = rule.Classify(f).Kind

	switch r.Kind {
	case rule.KindUnknown:
		r.fail(CodeUnclassified, ValidationDetail{
			Check: "classification",
			Got:   "unclassified",
			Fix:   "Run Tier 0 first.",
		})
		return r
	case rule.KindList:
		checkEntry(r, "group", f.Group, rule.RequiredFields(rule.KindList), []string{rule.FieldRoiBack})
		checkListItems(r, f.Group)
	default:
		required := rule.RequiredFields(r.Kind)
		for i, item := range f.Entries {
			where := fmt.Sprintf("entry %d", i)
			e, ok := item.(rule.Entry)
			if !ok {
				r.fail(CodeMissingField, ValidationDetail{
					Check:    where,
					Expected: "object",
					Got:      fmt.Sprintf("%T", item),
					Fix:      "Every array element must be an object.",
				})
				continue
			}
			checkEntry(r, where, e, required, []string{rule.FieldRoiFront, rule.FieldRoiBack})
		}
	}

	if r.Passed {
		r.Message = "Tier 1 passed"
	}
	return r
}

func checkListItems(r *ValidationResult, g rule.Entry) {
	items, ok := g[rule.FieldList].([]any)
	if !ok || len(items) == 0 {
		r.fail(CodeMissingField, ValidationDetail{
			Check:    "list",
			Expected: "non-empty array of items",
			Got:      rule.FormatValue(g[rule.FieldList]),
			Fix:      "Add at least one item with itemName and roiFront to list.",
		})
		return
	}
	for i, item := range items {
		where := fmt.Sprintf("list item %d", i)
		m, ok := item.(map[string]any)
		if !ok {
			r.fail(CodeMissingField, ValidationDetail{
				Check:    where,
				Expected: "object",
				Got:      fmt.Sprintf("%T", item),
				Fix:      "Every list item must be an object.",
			})
			continue
		}
		checkEntry(r, where, rule.Entry(m), rule.ListItemFields, []string{rule.FieldRoiFront})
	}
}

func checkEntry(r *ValidationResult, where string, e rule.Entry, required, rois []string) {
	if missing := e.Missing(required); len(missing) > 0 {
		r.fail(CodeMissingField, ValidationDetail{
			Check:    where + " fields",
			Expected: strings.Join(required, ", "),
			Got:      "missing " + strings.Join(missing, ", "),
			Fix:      fmt.Sprintf("Add %s to %s.", strings.Join(missing, ", "), where),
		})
	}
	for _, field := range rois {
		v, ok := e.Value(field)
		if !ok {
			continue
		}
		if _, err := extract.ParseROI(v); err != nil {
			r.fail(CodeBadROI, ValidationDetail{
				Check:    where + " " + field,
				Expected: "x,y,w,h integers",
				Got:      v,
				Fix:      fmt.Sprintf("Write %s of %s as four comma-separated integers.", field, where),
			})
		}
	}
}

func unwrapParse(err error) string {
	var pe *rule.ParseError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
