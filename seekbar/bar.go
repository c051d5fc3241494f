// Package seekbar paints a playback progress bar with the track's loop
// section overlaid.
package seekbar

import (
	"math"

	"github.com/simonhull/loopbar/loop"
)

// Color is a 24-bit RGB color.
type Color uint32

// RGB returns the color with the given components.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Painter receives the rectangles of a frame in paint order.
type Painter interface {
	FillRect(x, y, w, h int, c Color)
}

// Layout holds the pixel offsets of the bar and the slider.
type Layout struct {
	BarOffsetY    int // inset of the bar from the top and bottom edges
	SliderOffsetY int // inset of the slider from the top and bottom edges
	SliderOffsetX int // left margin; the slider is centred on the position
	SliderWidth   int
}

// DefaultLayout is the layout of the player panel.
var DefaultLayout = Layout{
	BarOffsetY:    13,
	SliderOffsetY: 6,
	SliderOffsetX: 5,
	SliderWidth:   17,
}

// CompactLayout fits a three-row character canvas: the slider spans every
// row and the bar the middle one.
var CompactLayout = Layout{
	BarOffsetY:    1,
	SliderOffsetY: 0,
	SliderOffsetX: 1,
	SliderWidth:   2,
}

// Theme holds the colors of each element.
type Theme struct {
	Background Color
	Bar        Color
	Slider     Color
	Loop       Color
}

// DefaultTheme is the light theme of the player panel.
var DefaultTheme = Theme{
	Background: RGB(255, 255, 255),
	Bar:        RGB(231, 234, 234),
	Slider:     RGB(0, 122, 217),
	Loop:       RGB(128, 128, 128),
}

// Playback is the player state needed to paint a frame.
type Playback struct {
	Position float64 // seconds
	Length   float64 // seconds
	Playing  bool
}

// Bar is the seekbar geometry. X, Y, W and H are the bar rectangle within
// the window; call Resize whenever the window size changes.
type Bar struct {
	Layout Layout
	Theme  Theme

	X, Y, W, H int
}

// NewBar returns a bar with the default layout and theme.
func NewBar() *Bar {
	return NewBarWith(DefaultLayout, DefaultTheme)
}

// NewBarWith returns a bar with a custom layout and theme.
func NewBarWith(layout Layout, theme Theme) *Bar {
	return &Bar{Layout: layout, Theme: theme, X: layout.SliderOffsetX}
}

// Resize fits the bar to a window of the given size, leaving room for the
// slider at both ends.
func (b *Bar) Resize(winW, winH int) {
	b.X = b.Layout.SliderOffsetX
	b.W = winW - b.Layout.SliderWidth
	b.H = winH
}

// Pos returns the slider position in pixels from the left of the bar.
func (b *Bar) Pos(state Playback) int {
	if state.Length <= 0 {
		return 0
	}
	return int(math.Ceil(float64(b.W) * state.Position / state.Length))
}

// Paint draws the background, the bar, the loop section when info is valid
// and the slider while playing. Nothing but the background and bar is drawn
// for a track of unknown length.
func (b *Bar) Paint(p Painter, state Playback, info loop.Info) {
	l := b.Layout
	innerY := b.Y + l.BarOffsetY
	innerH := b.H - l.BarOffsetY*2

	p.FillRect(b.X, b.Y, b.W, b.H, b.Theme.Background)
	p.FillRect(b.X, innerY, b.W, innerH, b.Theme.Bar)
	if state.Length <= 0 {
		return
	}

	if x, w, ok := LoopSpan(info, state.Length, b.W); ok {
		p.FillRect(b.X+x, innerY, w, innerH, b.Theme.Loop)
	}

	if state.Playing {
		x := b.X + min(b.Pos(state), b.W) - l.SliderOffsetX
		p.FillRect(x, b.Y+l.SliderOffsetY, l.SliderWidth, b.H-l.SliderOffsetY*2, b.Theme.Slider)
	}
}

// LoopSpan returns the horizontal extent of the loop section on a bar of
// the given width. Both edges are rounded up and clipped to [0, width], so a
// loop ending at or past the track length reaches the bar end. ok is false
// when info is invalid or length is not positive.
func LoopSpan(info loop.Info, length float64, width int) (x, w int, ok bool) {
	if !info.Valid || length <= 0 {
		return 0, 0, false
	}
	fw := float64(width)
	end := info.EndOr(length)
	left := math.Ceil(fw * info.Start / length)
	right := left + math.Ceil(fw*(end-info.Start)/length)
	if math.IsNaN(right) || math.IsInf(right, 0) {
		right = math.Ceil(fw * end / length)
	}
	left, right = clip(left, fw), clip(right, fw)
	return int(left), int(max(right-left, 0)), true
}

func clip(v, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(v, hi))
}
