package views

import (
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/raito-t/internal/ui/styles"
	"github.com/justyntemme/raito-t/internal/ui/terminal"
)

// Zoom levels available in the inspector
var zoomLevels = []float64{1.0, 1.5, 2.0, 3.0, 4.0}

// Pan moves in 10% increments
const panStep = 0.1

// PageView shows a single page at full resolution using the terminal's
// graphics protocol when it has one.
type PageView struct {
	title string
	img   image.Image

	zoomIndex int
	// pan position as a fraction of the free space, 0.5 is centred
	panX, panY float64

	termMode terminal.TermImageMode

	width  int
	height int
}

// NewPageView creates an inspector for img
func NewPageView(title string, img image.Image, mode terminal.TermImageMode) *PageView {
	v := &PageView{
		title:    title,
		img:      img,
		termMode: mode,
		width:    80,
		height:   24,
	}
	v.resetZoomPan()
	return v
}

func (v *PageView) resetZoomPan() {
	v.zoomIndex = 0
	v.panX = 0.5
	v.panY = 0.5
}

func (v *PageView) currentZoom() float64 {
	if v.zoomIndex >= 0 && v.zoomIndex < len(zoomLevels) {
		return zoomLevels[v.zoomIndex]
	}
	return 1.0
}

func (v *PageView) isZoomed() bool {
	return v.zoomIndex > 0
}

// Init implements View
func (v *PageView) Init() tea.Cmd { return nil }

// Update implements View
func (v *PageView) Update(msg tea.Msg) (View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch keyMsg.String() {
	case "q", "esc", "i":
		return v, Pop("")
	case "+", "=":
		if v.zoomIndex < len(zoomLevels)-1 {
			v.zoomIndex++
		}
	case "-", "_":
		if v.zoomIndex > 0 {
			v.zoomIndex--
			if v.zoomIndex == 0 {
				v.panX, v.panY = 0.5, 0.5
			}
		}
	case "0":
		v.resetZoomPan()
	case "h", "left":
		v.panX = clampUnit(v.panX - panStep)
	case "l", "right":
		v.panX = clampUnit(v.panX + panStep)
	case "k", "up":
		v.panY = clampUnit(v.panY - panStep)
	case "j", "down":
		v.panY = clampUnit(v.panY + panStep)
	}
	return v, nil
}

func clampUnit(f float64) float64 {
	return min(1, max(0, f))
}

// View implements View
func (v *PageView) View() string {
	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")
	b.WriteString(v.renderImage())
	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *PageView) renderHeader() string {
	title := styles.MangaTitle.Render(styles.TruncateText(v.title, max(10, v.width-20)))
	right := ""
	if v.isZoomed() {
		right = styles.MutedText.Render(fmt.Sprintf("[%d%%]", int(v.currentZoom()*100)))
	}
	gap := max(0, v.width-lipgloss.Width(title)-lipgloss.Width(right))
	return title + strings.Repeat(" ", gap) + right
}

func (v *PageView) renderImage() string {
	if v.img == nil {
		return styles.MutedText.Render("No image")
	}
	crop := cropImage(v.img, v.currentZoom(), v.panX, v.panY)

	if v.termMode == terminal.TermModeNone {
		lines, err := terminal.RenderBlocks(crop, v.width, max(1, v.height-4))
		if err != nil {
			return styles.ErrorStyle.Render("Render error: " + err.Error())
		}
		return strings.Join(lines, "\n")
	}
	out, err := terminal.RenderImageToString(crop, v.termMode, terminal.PageImageID)
	if err != nil {
		return styles.ErrorStyle.Render("Render error: " + err.Error())
	}
	return out
}

// cropImage returns the part of img visible at zoom with the viewport
// centred at the pan fractions
func cropImage(img image.Image, zoom, panX, panY float64) image.Image {
	if zoom <= 1.0 {
		return img
	}
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	si, ok := img.(subImager)
	if !ok {
		return img
	}

	bounds := img.Bounds()
	viewW := int(float64(bounds.Dx()) / zoom)
	viewH := int(float64(bounds.Dy()) / zoom)
	offX := int(clampUnit(panX) * float64(bounds.Dx()-viewW))
	offY := int(clampUnit(panY) * float64(bounds.Dy()-viewH))

	return si.SubImage(image.Rect(
		bounds.Min.X+offX,
		bounds.Min.Y+offY,
		bounds.Min.X+offX+viewW,
		bounds.Min.Y+offY+viewH,
	))
}

func (v *PageView) renderFooter() string {
	var help []string
	if v.isZoomed() {
		help = []string{
			styles.HelpKey.Render("hjkl") + styles.Help.Render(" pan"),
			styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
			styles.HelpKey.Render("0") + styles.Help.Render(" reset"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	} else {
		help = []string{
			styles.HelpKey.Render("+/-") + styles.Help.Render(" zoom"),
			styles.HelpKey.Render("q") + styles.Help.Render(" back"),
		}
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *PageView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Type implements View
func (v *PageView) Type() ViewType { return ViewPage }
