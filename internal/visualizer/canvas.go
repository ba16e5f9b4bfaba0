package visualizer

import (
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Canvas is a pixel surface the loop draws frames on
type Canvas interface {
	Size() (width, height int)
	Clear(c color.RGBA)
	// FillRect fills a rectangle; a negative w or h extends left or up from (x, y)
	FillRect(x, y, w, h int, c color.RGBA)
	// Present publishes the frame drawn since the last Present
	Present()
}

// ParseColor converts a #rrggbb string to an opaque colour
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ThemeColors parses frame colours, keeping the default for any that fail
func ThemeColors(background, upper, lower string) Colors {
	colors := DefaultColors
	if c, err := ParseColor(background); err == nil {
		colors.Background = c
	}
	if c, err := ParseColor(upper); err == nil {
		colors.Upper = c
	}
	if c, err := ParseColor(lower); err == nil {
		colors.Lower = c
	}
	return colors
}

// TermCanvas is a pixel canvas rendered with half-block glyphs, two pixels
// per terminal cell
type TermCanvas struct {
	mu     sync.Mutex
	width  int
	height int
	back   []color.RGBA
	front  []color.RGBA
}

// NewTermCanvas creates a canvas covering cols x rows terminal cells
func NewTermCanvas(cols, rows int) *TermCanvas {
	c := &TermCanvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the canvas to cols x rows cells and blanks it
func (c *TermCanvas) Resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width = max(cols, 0)
	c.height = max(rows, 0) * 2
	c.back = make([]color.RGBA, c.width*c.height)
	c.front = make([]color.RGBA, c.width*c.height)
}

// Size returns the canvas size in pixels
func (c *TermCanvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *TermCanvas) Clear(col color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.back {
		c.back[i] = col
	}
}

func (c *TermCanvas) FillRect(x, y, w, h int, col color.RGBA) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.width), min(y+h, c.height)
	for py := y0; py < y1; py++ {
		row := c.back[py*c.width : (py+1)*c.width]
		for px := x0; px < x1; px++ {
			row[px] = col
		}
	}
}

func (c *TermCanvas) Present() {
	c.mu.Lock()
	copy(c.front, c.back)
	c.mu.Unlock()
}

// At returns the presented pixel at (x, y)
func (c *TermCanvas) At(x, y int) color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return color.RGBA{}
	}
	return c.front[y*c.width+x]
}

// Render draws the presented frame as terminal rows
func (c *TermCanvas) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for row := 0; row < c.height/2; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		top := c.front[(2*row)*c.width : (2*row+1)*c.width]
		bottom := c.front[(2*row+1)*c.width : (2*row+2)*c.width]

		// coalesce runs of identical cells into one styled span
		for x := 0; x < c.width; {
			run := 1
			for x+run < c.width && top[x+run] == top[x] && bottom[x+run] == bottom[x] {
				run++
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top[x]))).
				Background(lipgloss.Color(hex(bottom[x])))
			b.WriteString(style.Render(strings.Repeat("▀", run)))
			x += run
		}
	}
	return b.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
