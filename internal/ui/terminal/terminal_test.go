package terminal

import (
	"bytes"
	"image"
	"testing"
)

func TestClearImages(t *testing.T) {
	tests := []struct {
		mode TermImageMode
		want string
	}{
		{mode: TermModeKitty, want: "\x1b_Ga=d,d=I,i=7\x1b\\"},
		{mode: TermModeIterm, want: "\x1b[2J\x1b[H"},
		{mode: TermModeSixel, want: "\x1b[2J\x1b[H"},
		{mode: TermModeNone, want: ""},
	}
	for _, tt := range tests {
		if got := ClearImages(tt.mode, 7); got != tt.want {
			t.Errorf("ClearImages(%v, 7) = %q, expected %q", tt.mode, got, tt.want)
		}
	}
}

func TestClearPageWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	old := Out
	Out = &buf
	t.Cleanup(func() { Out = old })

	ClearPage(TermModeNone)
	if buf.Len() != 0 {
		t.Errorf("block mode wrote %q", buf.String())
	}
	ClearPage(TermModeKitty)
	if got, want := buf.String(), ClearImages(TermModeKitty, PageImageID); got != want {
		t.Errorf("ClearPage wrote %q, expected %q", got, want)
	}
}

func TestRenderBlocksEmptyArea(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, size := range [][2]int{{0, 3}, {3, 0}, {-1, -1}} {
		lines, err := RenderBlocks(img, size[0], size[1])
		if err != nil || lines != nil {
			t.Errorf("RenderBlocks(%d, %d) = %v, %v", size[0], size[1], lines, err)
		}
	}
}
