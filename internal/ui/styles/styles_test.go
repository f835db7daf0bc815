package styles

import "testing"

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "Chapter 12", width: 20, want: "Chapter 12"},
		{in: "Chapter 12", width: 10, want: "Chapter 12"},
		{in: "Chapter 12", width: 8, want: "Chapter…"},
		{in: "Chapter 12", width: 0, want: ""},
	}
	for _, tt := range tests {
		if got := TruncateText(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateText(%q, %d) = %q, expected %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestNextThemeCycles(t *testing.T) {
	SetCurrentTheme("dark")
	t.Cleanup(func() { SetCurrentTheme("dark") })

	seen := map[string]bool{}
	for range BuiltinThemes {
		seen[NextTheme()] = true
	}
	if len(seen) != len(BuiltinThemes) {
		t.Errorf("cycled through %d themes, expected %d", len(seen), len(BuiltinThemes))
	}
	if CurrentTheme().Name != "dark" {
		t.Errorf("full cycle ended on %q", CurrentTheme().Name)
	}
	if GetTheme("missing").Name != "dark" {
		t.Errorf("unknown theme did not fall back to dark")
	}
}
