package terminal

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"io"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/eliukblau/pixterm/pkg/ansimage"
)

// TermImageMode represents the terminal's image display capability
type TermImageMode int

const (
	// TermModeNone indicates no graphics protocol; pages render as blocks
	TermModeNone TermImageMode = iota
	// TermModeKitty indicates Kitty graphics protocol support
	TermModeKitty
	// TermModeIterm indicates iTerm2 graphics protocol support
	TermModeIterm
	// TermModeSixel indicates Sixel graphics protocol support
	TermModeSixel
)

// PageImageID is a stable ID for the inspected page (for Kitty protocol)
const PageImageID uint32 = 1989

// String returns a human-readable name for the terminal mode
func (m TermImageMode) String() string {
	switch m {
	case TermModeKitty:
		return "Kitty"
	case TermModeIterm:
		return "iTerm2"
	case TermModeSixel:
		return "Sixel"
	default:
		return "Blocks"
	}
}

// DetectTerminalMode checks which image protocol the terminal supports
func DetectTerminalMode() TermImageMode {
	if rasterm.IsKittyCapable() {
		return TermModeKitty
	}
	if rasterm.IsItermCapable() {
		return TermModeIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return TermModeSixel
	}
	return TermModeNone
}

// ImageToPaletted converts an image to a paletted image required for Sixel
func ImageToPaletted(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	return paletted
}

// RenderImageToString renders an image with the terminal's graphics protocol.
// For Kitty protocol, an optional image ID can be passed for targeted clearing.
// Terminals without a protocol fall back to RenderBlocks at 80x40 cells.
func RenderImageToString(img image.Image, mode TermImageMode, kittyID ...uint32) (string, error) {
	var buf bytes.Buffer
	var renderErr error

	switch mode {
	case TermModeKitty:
		opts := rasterm.KittyImgOpts{}
		if len(kittyID) > 0 {
			opts.ImageId = kittyID[0]
		}
		renderErr = rasterm.KittyWriteImage(&buf, img, opts)
	case TermModeIterm:
		renderErr = rasterm.ItermWriteImage(&buf, img)
	case TermModeSixel:
		// Write to buffer instead of stdout for proper bubbletea integration
		renderErr = rasterm.SixelWriteImage(&buf, ImageToPaletted(img))
	default:
		lines, err := RenderBlocks(img, 80, 40)
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	}

	if renderErr != nil {
		return "", renderErr
	}
	return buf.String(), nil
}

// RenderBlocks scales img to exactly cols x rows cells of half-block
// characters and returns one string per row. Each cell carries two vertical
// pixels.
func RenderBlocks(img image.Image, cols, rows int) ([]string, error) {
	if cols <= 0 || rows <= 0 {
		return nil, nil
	}
	pix, err := ansimage.NewScaledFromImage(img, 2*rows, cols, color.Black, ansimage.ScaleModeResize, ansimage.NoDithering)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(pix.Render(), "\n"), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	return lines, nil
}

// Out receives the escape sequences written outside the bubbletea renderer
var Out io.Writer = os.Stdout

// ClearImages returns the escape sequence that removes image id from the
// screen. Inline protocols have no handle on a single image, so those clear
// the whole screen and let the next frame repaint it.
func ClearImages(mode TermImageMode, id uint32) string {
	switch mode {
	case TermModeKitty:
		// a=d delete, d=I by id including stored data
		return fmt.Sprintf("\x1b_Ga=d,d=I,i=%d\x1b\\", id)
	case TermModeIterm, TermModeSixel:
		return "\x1b[2J\x1b[H"
	default:
		return ""
	}
}

// ClearPage removes the inspected page image
func ClearPage(mode TermImageMode) {
	if seq := ClearImages(mode, PageImageID); seq != "" {
		io.WriteString(Out, seq)
	}
}
