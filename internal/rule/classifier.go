package rule

// Classification is the outcome of classifying a rule file.
type Classification struct {
	Kind   Kind
	Reason string
}

// OK reports whether a kind was found.
func (c Classification) OK() bool { return c.Kind != KindUnknown }

// Rule pairs a structural predicate with the kind it selects.
type Rule struct {
	Kind   Kind
	Reason string
	Match  func(f *File) bool
}

// Rules is the classification table. Order is precedence: kinds overlap
// (an ocr entry also has mode), so the first match wins. Click and swipe are
// field-count heuristics and must stay exactly as they are, otherwise
// existing asset files get reclassified.
var Rules = []Rule{
	{
		Kind:   KindList,
		Reason: "top-level object with a name field",
		Match: func(f *File) bool {
			return f.Shape == ShapeMapping && f.Group.Has(FieldName)
		},
	},
	{
		Kind:   KindImage,
		Reason: "first entry has imageName",
		Match:  firstEntry(func(e Entry) bool { return e.Has(FieldImageName) }),
	},
	{
		Kind:   KindClick,
		Reason: "first entry has exactly 4 fields",
		Match:  firstEntry(func(e Entry) bool { return len(e) == 4 }),
	},
	{
		Kind:   KindLongClick,
		Reason: "first entry has duration",
		Match:  firstEntry(func(e Entry) bool { return e.Has(FieldDuration) }),
	},
	{
		Kind:   KindSwipe,
		Reason: "first entry has mode and exactly 5 fields",
		Match:  firstEntry(func(e Entry) bool { return e.Has(FieldMode) && len(e) == 5 }),
	},
	{
		Kind:   KindOcr,
		Reason: "first entry has keyword",
		Match:  firstEntry(func(e Entry) bool { return e.Has(FieldKeyword) }),
	},
}

func firstEntry(pred func(Entry) bool) func(*File) bool {
	return func(f *File) bool {
		e, ok := f.First()
		return ok && pred(e)
	}
}

// Classify runs the table against f and returns the first matching kind.
func Classify(f *File) Classification {
	for _, r := range Rules {
		if r.Match(f) {
			return Classification{Kind: r.Kind, Reason: r.Reason}
		}
	}
	return Classification{Kind: KindUnknown, Reason: missReason(f)}
}

func missReason(f *File) string {
	switch f.Shape {
	case ShapeMapping:
		return "top-level object without a name field"
	case ShapeSequence:
		if len(f.Entries) == 0 {
			return "empty array"
		}
		if _, ok := f.First(); !ok {
			return "first array element is not an object"
		}
		return "first entry matches no rule kind"
	}
	return "unrecognized document shape"
}
