// Package overlay renders the environmental field over the viewport:
// direction glyphs and magnitude labels on a geographic lattice, rebuilt
// from the latest committed samples on every paint. Rendering never waits
// on the network.
package overlay

import (
	"math"
	"sync"
	"time"

	"github.com/ngmaloney/marine-overlay/internal/interp"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/viewport"
	"github.com/ngmaloney/marine-overlay/internal/watermask"
)

// Frame is one rendered overlay frame handed to the surface.
type Frame struct {
	Visible  bool
	Opacity  float64 // 0..1, pulsed while loading
	Commands []DrawCommand
}

// Surface is the drawing capability the renderer needs from its host.
// Implementations adapt it to a particular map or terminal integration;
// the renderer itself never touches the host directly.
type Surface interface {
	Attach()
	Detach()
	Resize(width, height int)
	Draw(frame Frame)
}

// pulsePeriod is the opacity pulse cycle while a fetch is in flight.
const pulsePeriod = time.Second

// animState is the renderer's animation state: nothing scheduled, one
// coalesced redraw pending, or the loading pulse chaining frames.
type animState int

const (
	animIdle animState = iota
	animPendingDraw
	animPulsing
)

// Config wires a Renderer to its collaborators. The getters return the
// current committed state; they are called on every paint.
type Config struct {
	Surface   Surface
	Scheduler Scheduler

	Transform func() viewport.Transform
	Samples   func() *interp.SampleSet
	Mask      func() *watermask.Mask
	Mode      func() models.DisplayMode

	Converters models.Converters
	Now        func() time.Time // nil means time.Now
}

// Renderer owns the overlay drawing surface. Redraws coalesce: any number
// of invalidations before the next frame collapse into one paint.
type Renderer struct {
	cfg Config
	now func() time.Time

	mu          sync.Mutex
	state       animState
	cancelFrame func()
	visible     bool
	loading     bool
	pulseStart  time.Time
	closed      bool
}

// NewRenderer attaches the surface and returns an idle renderer.
func NewRenderer(cfg Config) *Renderer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	r := &Renderer{cfg: cfg, now: now, visible: true}
	cfg.Surface.Attach()
	return r
}

// Invalidate requests a repaint. Multiple calls before the next frame
// coalesce into a single paint; during the loading pulse the chained
// pulse frames already repaint, so nothing extra is scheduled.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.state != animIdle {
		return
	}
	r.state = animPendingDraw
	r.cancelFrame = r.cfg.Scheduler.NextFrame(r.frame)
}

// SetConverters swaps the unit converters and repaints. No fetch is
// triggered: converted values are a render-time concern.
func (r *Renderer) SetConverters(conv models.Converters) {
	r.mu.Lock()
	r.cfg.Converters = conv
	r.mu.Unlock()
	r.Invalidate()
}

// SetLoading starts or stops the loading pulse. Starting switches to
// chained per-frame repaints with a sinusoidal opacity; stopping restores
// full opacity exactly once and forces a final redraw.
func (r *Renderer) SetLoading(loading bool) {
	r.mu.Lock()
	if r.closed || loading == r.loading {
		r.mu.Unlock()
		return
	}
	r.loading = loading
	if loading {
		r.pulseStart = r.now()
		r.cancelPendingLocked()
		r.state = animPulsing
		r.cancelFrame = r.cfg.Scheduler.NextFrame(r.frame)
		r.mu.Unlock()
		return
	}
	r.cancelPendingLocked()
	r.state = animIdle
	r.mu.Unlock()
	r.paint()
}

// ZoomStarted hides the surface so stale-scaled glyphs are not drawn
// mid-gesture.
func (r *Renderer) ZoomStarted() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.visible = false
	r.cancelPendingLocked()
	r.state = animIdle
	r.mu.Unlock()
	r.paint()
}

// ZoomEnded shows the surface again and redraws immediately from the
// cached samples, without waiting for any fetch.
func (r *Renderer) ZoomEnded() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.visible = true
	if r.loading && r.state == animIdle {
		r.state = animPulsing
		r.cancelFrame = r.cfg.Scheduler.NextFrame(r.frame)
	}
	r.mu.Unlock()
	r.paint()
}

// Resize forwards the new surface size and repaints.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	r.cfg.Surface.Resize(width, height)
	r.Invalidate()
}

// Close detaches the surface and cancels all pending animation work.
// Idempotent; safe to call from any state.
func (r *Renderer) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cancelPendingLocked()
	r.state = animIdle
	r.mu.Unlock()
	r.cfg.Surface.Detach()
}

// frame is the scheduled frame callback: paint, then keep the pulse
// chain going if still loading.
func (r *Renderer) frame() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.state == animPendingDraw {
		r.state = animIdle
	}
	if r.state == animPulsing {
		r.cancelFrame = r.cfg.Scheduler.NextFrame(r.frame)
	} else {
		r.cancelFrame = nil
	}
	r.mu.Unlock()
	r.paint()
}

// paint builds draw commands from current state and hands the surface a
// complete frame.
func (r *Renderer) paint() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	visible := r.visible
	opacity := 1.0
	if r.loading {
		elapsed := r.now().Sub(r.pulseStart).Seconds()
		phase := 2 * math.Pi * elapsed / pulsePeriod.Seconds()
		opacity = 0.65 + 0.35*math.Sin(phase)
		if opacity > 1 {
			opacity = 1
		}
		if opacity < 0.3 {
			opacity = 0.3
		}
	}
	conv := r.cfg.Converters
	r.mu.Unlock()

	frame := Frame{Visible: visible, Opacity: opacity}
	if visible {
		frame.Commands = BuildCommands(r.cfg.Samples(), r.cfg.Mask(), r.cfg.Transform(), r.cfg.Mode(), conv)
	}
	r.cfg.Surface.Draw(frame)
}

func (r *Renderer) cancelPendingLocked() {
	if r.cancelFrame != nil {
		r.cancelFrame()
		r.cancelFrame = nil
	}
}
