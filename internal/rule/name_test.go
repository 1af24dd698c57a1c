package rule

import "testing"

func TestTransformName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"START_BUTTON", "START_BUTTON"},
		{"start_button", "START_BUTTON"},
		{"StartButton", "STARTBUTTON"},
		{"exit_2", "EXIT_2"},
		{"EXIT_2", "EXIT_2"},
		{"123", "123"},
		{"", ""},
	}

	for _, tt := range tests {
		got := TransformName(tt.name)
		if got != tt.want {
			t.Errorf("TransformName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTransformNameIdempotent(t *testing.T) {
	for _, name := range []string{"a", "Ab", "aB_c1", "UPPER", "mixed_Case_9", "x"} {
		once := TransformName(name)
		twice := TransformName(once)
		if once != twice {
			t.Errorf("TransformName not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}
