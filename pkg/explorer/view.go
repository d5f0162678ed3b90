package explorer

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// halfBlock draws the top pixel in the foreground and the bottom pixel in
// the background of one cell.
const halfBlock = "▀"

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	captionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D7D7"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
)

func (m Model) View() string {
	var b strings.Builder
	if m.frame == nil {
		b.WriteString(strings.Repeat("\n", max(m.rows-1, 0)))
	} else {
		m.drawFrame(&b)
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// drawFrame writes the frame as rows of half blocks. Runs of identical
// cells share one styled span. A frame painted for an older grid size is
// clipped to the current one until its replacement arrives.
func (m Model) drawFrame(b *strings.Builder) {
	bounds := m.frame.Bounds()
	cols := min(m.cols, bounds.Dx())
	rows := min(m.rows, bounds.Dy()/2)

	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString("\n")
		}
		x := 0
		for x < cols {
			top := m.frame.RGBAAt(x, 2*r)
			bottom := m.frame.RGBAAt(x, 2*r+1)
			run := 1
			for x+run < cols && m.frame.RGBAAt(x+run, 2*r) == top && m.frame.RGBAAt(x+run, 2*r+1) == bottom {
				run++
			}
			style := lipgloss.NewStyle().Foreground(hexColor(top)).Background(hexColor(bottom))
			b.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			x += run
		}
	}
}

func (m Model) statusLine() string {
	c := m.vp.Center
	parts := []string{
		captionStyle.Render(m.caption),
		statusStyle.Render(fmt.Sprintf("%.6g%+.6gi  width %.3g  iter %d  %s",
			real(c), imag(c), m.vp.Width, m.params.MaxIterations, m.Palette().Name())),
	}
	if m.smooth {
		parts = append(parts, statusStyle.Render("smooth"))
	}
	if m.lastPaint > 0 {
		parts = append(parts, statusStyle.Render(m.lastPaint.Round(time.Millisecond).String()))
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return strings.Join(parts, "  ")
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
