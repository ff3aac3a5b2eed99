package ui

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/marine-overlay/internal/config"
	"github.com/ngmaloney/marine-overlay/internal/fetch"
	"github.com/ngmaloney/marine-overlay/internal/gridsource"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/overlay"
	"github.com/ngmaloney/marine-overlay/internal/viewport"
)

// AppOptions carries the external services the dashboard runs against.
// Prefs and MaskFallback may be nil.
type AppOptions struct {
	Config       *config.Config
	Prefs        *config.Prefs
	PrefStore    *config.PrefStore
	Weather      gridsource.WeatherClient
	Water        gridsource.WaterClient
	MaskFallback fetch.MaskFallback
	Logger       *slog.Logger
}

// App owns the overlay engine behind the bubbletea model. Engine
// callbacks fire from timers and fetch goroutines; App forwards them to
// the program as messages once Bind has been called.
type App struct {
	Model Model

	mu   sync.Mutex
	send func(tea.Msg)
}

// NewApp assembles the viewport, coordinator, renderer and model.
func NewApp(opts AppOptions) *App {
	app := &App{}

	prefs := config.DefaultPrefs()
	if opts.Prefs != nil {
		prefs = *opts.Prefs
	}

	cfg := opts.Config
	view := viewport.New(cfg.StartLat, cfg.StartLon, cfg.StartSpan)

	surface := NewSurface(80, 24, func() { app.dispatch(overlayFrameMsg{}) })

	coord := fetch.NewCoordinator(fetch.Config{
		Weather:      opts.Weather,
		Water:        opts.Water,
		MaskFallback: opts.MaskFallback,
		Logger:       opts.Logger,
		OnLoadingChange: func(loading bool) {
			app.dispatch(loadingChangedMsg{loading: loading})
		},
		OnError: func(message string) {
			app.dispatch(overlayErrorMsg{message: message})
		},
		OnCommit: func() {
			app.dispatch(dataCommittedMsg{})
		},
	})
	coord.SetMode(prefs.Mode)
	coord.SetForecastHour(prefs.ForecastHour)

	converters := models.DefaultConverters()
	if prefs.Imperial {
		converters = models.ImperialConverters()
	}

	renderer := overlay.NewRenderer(overlay.Config{
		Surface:    surface,
		Scheduler:  &overlay.TimerScheduler{},
		Transform:  view.Transform,
		Samples:    coord.Samples,
		Mask:       coord.Mask,
		Mode:       coord.Mode,
		Converters: converters,
	})

	app.Model = NewModel(Deps{
		Config:      cfg,
		Prefs:       opts.PrefStore,
		Coordinator: coord,
		View:        view,
		Surface:     surface,
		Renderer:    renderer,
		Imperial:    prefs.Imperial,
	})
	return app
}

// Bind connects engine callbacks to the program. Call it after
// tea.NewProgram and before Run so no event is dropped.
func (a *App) Bind(send func(tea.Msg)) {
	a.mu.Lock()
	a.send = send
	a.mu.Unlock()
}

func (a *App) dispatch(msg tea.Msg) {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
