package layout

import (
	"strings"
	"testing"
)

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("expected narrow terminal to be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("expected minimum size to fit")
	}
}

func TestRenderHeaderShowsTitleAndStatus(t *testing.T) {
	h := RenderHeader("Place Value", "guest", 80)
	for _, want := range []string{"Lessonflow", "Place Value", "guest"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
}

func TestRenderFooterJoinsHints(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Esc", Description: "Back"}, {Key: "→", Description: "Next"}}, 80)
	if !strings.Contains(f, "Esc") || !strings.Contains(f, "Next") {
		t.Errorf("footer missing hints: %q", f)
	}
}
