package rule

import "testing"

func mustParse(t *testing.T, doc string) *File {
	t.Helper()
	f, err := Parse("test.json", "tasks/Test", []byte(doc))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", doc, err)
	}
	return f
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Kind
	}{
		{
			name: "list group",
			doc:  `{"name": "shikigami", "description": "d", "direction": "vertical", "type": "image", "roiBack": "0,0,10,10", "list": []}`,
			want: KindList,
		},
		{
			name: "list with four fields is still list",
			doc:  `{"name": "a", "description": "b", "direction": "c", "type": "d"}`,
			want: KindList,
		},
		{
			name: "image",
			doc:  `[{"itemName": "x", "imageName": "x.png", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "threshold": 0.8, "method": "Template matching", "description": "d"}]`,
			want: KindImage,
		},
		{
			name: "click has exactly four fields",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d"}]`,
			want: KindClick,
		},
		{
			name: "long click",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d", "duration": 1000}]`,
			want: KindLongClick,
		},
		{
			name: "swipe has mode and five fields",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d", "mode": "default"}]`,
			want: KindSwipe,
		},
		{
			name: "mode with four fields is click",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "mode": "default"}]`,
			want: KindClick,
		},
		{
			name: "ocr carries mode but is not swipe",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d", "mode": "Single", "method": "Default", "keyword": "ok"}]`,
			want: KindOcr,
		},
		{
			name: "image wins over four fields",
			doc:  `[{"itemName": "x", "imageName": "x.png", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4"}]`,
			want: KindImage,
		},
		{
			name: "only the first entry is inspected",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d"}, {"imageName": "y.png"}]`,
			want: KindClick,
		},
		{
			name: "mapping without name",
			doc:  `{"description": "d"}`,
			want: KindUnknown,
		},
		{
			name: "first element not an object",
			doc:  `[1, 2, 3]`,
			want: KindUnknown,
		},
		{
			name: "nothing matches",
			doc:  `[{"itemName": "x", "roiFront": "1,2,3,4", "roiBack": "1,2,3,4", "description": "d", "extra": 1, "more": 2}]`,
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		got := Classify(mustParse(t, tt.doc))
		if got.Kind != tt.want {
			t.Errorf("%s: Classify() = %v (%s), want %v", tt.name, got.Kind, got.Reason, tt.want)
		}
		if got.Reason == "" {
			t.Errorf("%s: Classify() returned an empty reason", tt.name)
		}
	}
}

func TestRulesOrder(t *testing.T) {
	want := Kinds()
	if len(Rules) != len(want) {
		t.Fatalf("len(Rules) = %d, want %d", len(Rules), len(want))
	}
	for i, r := range Rules {
		if r.Kind != want[i] {
			t.Errorf("Rules[%d].Kind = %v, want %v", i, r.Kind, want[i])
		}
	}
}

func TestSwipeFieldCountBoundary(t *testing.T) {
	five := mustParse(t, `[{"itemName": "s", "roiFront": "1,1,1,1", "roiBack": "1,1,1,1", "description": "d", "mode": "up"}]`)
	four := mustParse(t, `[{"itemName": "s", "roiFront": "1,1,1,1", "roiBack": "1,1,1,1", "mode": "up"}]`)
	six := mustParse(t, `[{"itemName": "s", "roiFront": "1,1,1,1", "roiBack": "1,1,1,1", "description": "d", "mode": "up", "speed": 3}]`)

	if got := Classify(five).Kind; got != KindSwipe {
		t.Errorf("five fields with mode = %v, want swipe", got)
	}
	if got := Classify(four).Kind; got != KindClick {
		t.Errorf("four fields with mode = %v, want click", got)
	}
	if got := Classify(six).Kind; got != KindUnknown {
		t.Errorf("six fields with mode = %v, want unknown", got)
	}
}
