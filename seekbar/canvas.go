package seekbar

import "strings"

// Canvas is an in-memory Painter that rasterises rectangles onto a grid of
// cells, one cell per pixel. Rectangles are clipped to the canvas.
type Canvas struct {
	width, height int
	cells         []Color
	painted       []bool
	glyphs        map[Color]rune
}

// NewCanvas returns an empty canvas.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	return &Canvas{
		width:   width,
		height:  height,
		cells:   make([]Color, width*height),
		painted: make([]bool, width*height),
		glyphs:  make(map[Color]rune),
	}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// FillRect paints the intersection of the rectangle and the canvas.
// Rectangles with a non-positive width or height paint nothing.
func (c *Canvas) FillRect(x, y, w, h int, col Color) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.width), min(y+h, c.height)
	for row := y0; row < y1; row++ {
		for i := row*c.width + x0; i < row*c.width+x1; i++ {
			c.cells[i] = col
			c.painted[i] = true
		}
	}
}

// At returns the color of a cell and whether anything painted it.
func (c *Canvas) At(x, y int) (Color, bool) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, false
	}
	i := y*c.width + x
	return c.cells[i], c.painted[i]
}

// SetGlyph sets the rune String uses for a color.
func (c *Canvas) SetGlyph(col Color, r rune) {
	c.glyphs[col] = r
}

// SetTheme assigns glyphs to the colors of a theme: space for the
// background, '-' for the bar, '=' for the loop section and '|' for the
// slider.
func (c *Canvas) SetTheme(t Theme) {
	c.SetGlyph(t.Background, ' ')
	c.SetGlyph(t.Bar, '-')
	c.SetGlyph(t.Loop, '=')
	c.SetGlyph(t.Slider, '|')
}

// String renders the canvas one line per row. Unpainted cells are spaces
// and colors without a glyph are '#'.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow((c.width + 1) * c.height)
	for y := range c.height {
		for x := range c.width {
			col, ok := c.At(x, y)
			switch r, known := c.glyphs[col]; {
			case !ok:
				sb.WriteByte(' ')
			case known:
				sb.WriteRune(r)
			default:
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
