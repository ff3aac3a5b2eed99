// Package fetch decides when the overlay talks to the remote grid
// services. It owns the authoritative samples and water-mask collections,
// debounces viewport-driven fetches, deduplicates requests by cache key,
// and classifies failures into user-visible messages.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ngmaloney/marine-overlay/internal/gridplan"
	"github.com/ngmaloney/marine-overlay/internal/gridsource"
	"github.com/ngmaloney/marine-overlay/internal/interp"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/watermask"
)

// DefaultDebounce is the settle delay before a pan/zoom-triggered fetch.
const DefaultDebounce = 500 * time.Millisecond

// State is the overlay lifecycle state the coordinator is in. Enabled
// states keep rendering the last committed samples regardless of
// fetching or errors.
type State int

const (
	StateDisabled State = iota
	StateFetching
	StateReady
	StateError
)

// MaskFallback supplies a locally provisioned classification lattice when
// the remote water-grid service has not answered. watermask.Store
// implements it.
type MaskFallback interface {
	Load(bounds models.GridBounds, spacing float64) ([]models.WaterGridPoint, error)
}

// Config wires a Coordinator. Weather is required; everything else has a
// usable zero value.
type Config struct {
	Weather      gridsource.WeatherClient
	Water        gridsource.WaterClient
	MaskFallback MaskFallback

	Debounce time.Duration // 0 means DefaultDebounce
	Clock    Clock         // nil means RealClock()
	Logger   *slog.Logger  // nil means slog.Default()

	// OnLoadingChange fires when a data fetch starts or finishes.
	// OnError publishes a user-visible message, or "" to clear it.
	// OnCommit fires after samples or mask are replaced.
	// All three may be nil. Callbacks run with the coordinator locked
	// and must not call back into it; hand the event off instead.
	OnLoadingChange func(loading bool)
	OnError         func(message string)
	OnCommit        func()
}

// Coordinator is the single writer of the overlay's samples and water
// mask. All exported methods are safe for concurrent use; readers receive
// immutable snapshots and never observe partial updates.
type Coordinator struct {
	cfg    Config
	clock  Clock
	logger *slog.Logger

	mu            sync.Mutex
	enabled       bool
	mode          models.DisplayMode
	forecastHour  int
	view          models.GridBounds
	resolution    float64
	samples       *interp.SampleSet
	mask          *watermask.Mask
	lastDataKey   string
	lastMaskKey   string
	lastError     string
	inflight      int
	debounceTimer Timer
}

// NewCoordinator creates a disabled coordinator. Enable starts fetching.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		mode:   models.ModeWind,
	}
}

// dataKey derives the fetch identity for a forecast-grid request.
func dataKey(bounds models.GridBounds, resolution float64, forecastHour int) string {
	return fmt.Sprintf("%s|%.2f|%d", bounds, resolution, forecastHour)
}

// maskKey derives the fetch identity for a water-grid request.
func maskKey(lattice models.GridBounds, spacing float64) string {
	return fmt.Sprintf("%s|%.4f", lattice, spacing)
}

// Enable turns the overlay on for the given viewport and fetches
// immediately, bypassing the debounce.
func (c *Coordinator) Enable(view models.GridBounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
	c.view = view
	c.maybeFetchData()
	c.maybeFetchMask()
}

// Disable tears the overlay down: cached samples and mask are discarded
// and any pending debounce is cancelled. In-flight results are dropped
// when they complete. Safe to call repeatedly.
func (c *Coordinator) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.enabled = false
	c.cancelDebounceLocked()
	c.samples = nil
	c.mask = nil
	c.lastDataKey = ""
	c.lastMaskKey = ""
	c.setErrorLocked("")
	c.publishLoading(false)
}

// ViewportSettled records the new viewport after a pan or zoom gesture
// finishes and schedules a debounced fetch. Repeated settles push the
// timer out.
func (c *Coordinator) ViewportSettled(view models.GridBounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = view
	if !c.enabled {
		return
	}
	c.cancelDebounceLocked()
	c.debounceTimer = c.clock.AfterFunc(c.cfg.Debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.debounceTimer = nil
		c.maybeFetchData()
		c.maybeFetchMask()
	})
}

// ZoomStarted cancels any pending debounced fetch for the duration of the
// gesture; the renderer hides its surface at the same time.
func (c *Coordinator) ZoomStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelDebounceLocked()
}

// SetForecastHour switches the forecast hour and fetches immediately; the
// cache key check still suppresses a redundant call.
func (c *Coordinator) SetForecastHour(hour int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hour == c.forecastHour {
		return
	}
	c.forecastHour = hour
	if c.enabled {
		c.maybeFetchData()
	}
}

// SetMode switches the display mode. Marine modes fetch the water mask
// immediately (no debounce); leaving marine modes clears it. The "no data
// for mode" check is re-evaluated against the cached samples.
func (c *Coordinator) SetMode(mode models.DisplayMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == c.mode {
		return
	}
	c.mode = mode
	if !c.enabled {
		return
	}
	if mode.IsMarine() {
		c.maybeFetchMask()
	} else {
		c.mask = nil
		c.lastMaskKey = ""
	}
	c.reevaluateModeErrorLocked()
	c.publishCommit()
}

// Refresh re-issues the current fetch even when the key is unchanged, so
// a dashboard left open picks up new forecast runs. Used by the periodic
// refresh job.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	c.lastDataKey = ""
	c.lastMaskKey = ""
	c.maybeFetchData()
	c.maybeFetchMask()
}

// Samples returns the current committed sample set. May be nil.
func (c *Coordinator) Samples() *interp.SampleSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples
}

// Mask returns the current committed water mask. May be nil (fail open).
func (c *Coordinator) Mask() *watermask.Mask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mask
}

// Mode returns the active display mode.
func (c *Coordinator) Mode() models.DisplayMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ForecastHour returns the active forecast hour.
func (c *Coordinator) ForecastHour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forecastHour
}

// Resolution returns the fetch resolution of the last issued request,
// for status display.
func (c *Coordinator) Resolution() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolution
}

// State reports the overlay lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case !c.enabled:
		return StateDisabled
	case c.inflight > 0:
		return StateFetching
	case c.lastError != "":
		return StateError
	default:
		return StateReady
	}
}

// maybeFetchData issues a forecast-grid fetch unless the fetch key is
// unchanged and a non-empty result is already cached. Caller holds mu.
func (c *Coordinator) maybeFetchData() {
	if !c.enabled || c.cfg.Weather == nil || !c.view.Valid() {
		return
	}
	resolution, bounds := gridplan.Plan(c.view)
	key := dataKey(bounds, resolution, c.forecastHour)
	if key == c.lastDataKey && c.samples.Len() > 0 {
		return
	}
	c.lastDataKey = key
	c.resolution = resolution
	c.inflight++
	c.publishLoading(true)
	go c.fetchData(key, bounds, resolution, c.forecastHour)
}

// fetchData runs off the coordinator goroutine; the commit is guarded by
// the key so a superseded request cannot clobber newer state.
func (c *Coordinator) fetchData(key string, bounds models.GridBounds, resolution float64, forecastHour int) {
	resp, err := c.cfg.Weather.FetchGrid(context.Background(), bounds, resolution, forecastHour)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.inflight == 0 {
		c.publishLoading(false)
	}
	if !c.enabled || key != c.lastDataKey {
		// Superseded or torn down; the result no longer matters.
		return
	}

	if err != nil {
		// Stale data beats empty data: cached samples stay.
		c.logger.Warn("forecast grid fetch failed", "error", err, "bounds", bounds.String())
		c.setErrorLocked(messageForError(err))
		return
	}

	if len(resp.Points) == 0 {
		// A zero-point response is a fresh authoritative answer, so the
		// cache is cleared rather than kept.
		c.samples = interp.NewSampleSet(nil)
		c.setErrorLocked(msgNoDataInArea)
		c.publishCommit()
		return
	}

	c.samples = interp.NewSampleSet(resp.Points)
	c.reevaluateModeErrorLocked()
	c.publishCommit()
}

// maybeFetchMask issues a water-grid fetch for marine modes, with the
// same key discipline as data fetches. Caller holds mu.
func (c *Coordinator) maybeFetchMask() {
	if !c.enabled || !c.mode.IsMarine() || !c.view.Valid() {
		return
	}
	if c.cfg.Water == nil && c.cfg.MaskFallback == nil {
		return
	}
	spacing, lattice := gridplan.MaskPlan(c.view)
	key := maskKey(lattice, spacing)
	if key == c.lastMaskKey && c.mask.Len() > 0 {
		return
	}
	c.lastMaskKey = key
	go c.fetchMask(key, lattice, spacing)
}

// fetchMask fetches the classification lattice. Failures are silently
// tolerated: the renderer fails open rather than surfacing mask errors.
func (c *Coordinator) fetchMask(key string, lattice models.GridBounds, spacing float64) {
	var grid []models.WaterGridPoint
	var err error
	if c.cfg.Water != nil {
		grid, err = c.cfg.Water.FetchWaterGrid(context.Background(),
			lattice.South, lattice.North, lattice.West, lattice.East, spacing)
	}
	if (err != nil || len(grid) == 0) && c.cfg.MaskFallback != nil {
		if err != nil {
			c.logger.Debug("water grid fetch failed, trying local cache", "error", err)
		}
		grid, err = c.cfg.MaskFallback.Load(lattice, spacing)
	}
	if err != nil {
		c.logger.Debug("water mask unavailable, rendering unmasked", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || !c.mode.IsMarine() || key != c.lastMaskKey {
		return
	}
	c.mask = watermask.NewMask(grid)
	c.publishCommit()
}

// reevaluateModeErrorLocked publishes the mode-specific "no data" message
// when cached samples exist but none carry the active mode's field.
func (c *Coordinator) reevaluateModeErrorLocked() {
	if c.samples.Len() == 0 {
		return
	}
	if c.samples.CountForMode(c.mode) == 0 {
		c.setErrorLocked(messageForMode(c.mode))
		return
	}
	c.setErrorLocked("")
}

func (c *Coordinator) cancelDebounceLocked() {
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
		c.debounceTimer = nil
	}
}

func (c *Coordinator) setErrorLocked(message string) {
	if message == c.lastError {
		return
	}
	c.lastError = message
	if c.cfg.OnError != nil {
		c.cfg.OnError(message)
	}
}

func (c *Coordinator) publishLoading(loading bool) {
	if c.cfg.OnLoadingChange != nil {
		c.cfg.OnLoadingChange(loading)
	}
}

func (c *Coordinator) publishCommit() {
	if c.cfg.OnCommit != nil {
		c.cfg.OnCommit()
	}
}
