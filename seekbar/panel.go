package seekbar

import "github.com/simonhull/loopbar/loop"

// Panel is the playback event handler for one seekbar. It owns the loop
// section of the current track: OnNewTrack replaces it and Paint reads it.
//
// A Panel is not safe for concurrent use; drive it from a single goroutine,
// the way a player drives its UI callbacks.
type Panel struct {
	bar  *Bar
	info loop.Info
}

// NewPanel returns a panel painting with bar.
func NewPanel(bar *Bar) *Panel {
	return &Panel{bar: bar}
}

// Bar returns the panel's bar.
func (p *Panel) Bar() *Bar {
	return p.bar
}

// Loop returns the loop section of the current track.
func (p *Panel) Loop() loop.Info {
	return p.info
}

// OnNewTrack resolves the loop section of the track now playing. A nil
// source clears it.
func (p *Panel) OnNewTrack(src loop.Source) {
	if src == nil {
		p.info = loop.Info{}
		return
	}
	p.info = loop.Load(src)
}

// OnPlaybackStop keeps the loop section; the bar still shows it when
// stopped.
func (p *Panel) OnPlaybackStop() {}

// OnSize resizes the bar to the window.
func (p *Panel) OnSize(winW, winH int) {
	p.bar.Resize(winW, winH)
}

// Paint draws one frame.
func (p *Panel) Paint(painter Painter, state Playback) {
	p.bar.Paint(painter, state, p.info)
}
