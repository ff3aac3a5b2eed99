package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/marine-overlay/internal/config"
	"github.com/ngmaloney/marine-overlay/internal/gridsource"
	"github.com/ngmaloney/marine-overlay/internal/models"
)

type stubWeather struct{}

func (stubWeather) FetchGrid(ctx context.Context, bounds models.GridBounds, resolution float64, forecastHour int) (*gridsource.GridResponse, error) {
	speed := 12.0
	dir := 180.0
	return &gridsource.GridResponse{Points: []models.Sample{
		{Lat: bounds.South, Lon: bounds.West, Wind: &models.Wind{Speed: speed, Direction: dir}},
	}}, nil
}

type stubWater struct{}

func (stubWater) FetchWaterGrid(ctx context.Context, south, north, west, east, spacing float64) ([]models.WaterGridPoint, error) {
	return []models.WaterGridPoint{{Lat: south, Lon: west, Type: models.SurfaceOcean}}, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	app := NewApp(AppOptions{
		Config: &config.Config{
			GridBaseURL: "http://example.invalid",
			StartLat:    41.5,
			StartLon:    -70.5,
			StartSpan:   4,
		},
		Weather: stubWeather{},
		Water:   stubWater{},
	})
	t.Cleanup(func() { app.Model.deps.Renderer.Close() })
	return app.Model
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQuitTearsDown(t *testing.T) {
	m := newTestModel(t)
	m.Init()

	m, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", cmd())
	}
}

func TestPanMovesViewport(t *testing.T) {
	m := newTestModel(t)
	before := m.deps.View.Bounds()

	m, _ = update(t, m, key("l"))
	after := m.deps.View.Bounds()
	if after.West <= before.West {
		t.Fatalf("pan east did not move view: west %v -> %v", before.West, after.West)
	}

	m, _ = update(t, m, key("k"))
	north := m.deps.View.Bounds()
	if north.North <= after.North {
		t.Fatalf("pan north did not move view: north %v -> %v", after.North, north.North)
	}
}

func TestZoomChangesSpan(t *testing.T) {
	m := newTestModel(t)
	before := m.deps.View.Bounds().LonRange()

	m, _ = update(t, m, key("+"))
	in := m.deps.View.Bounds().LonRange()
	if in >= before {
		t.Fatalf("zoom in did not shrink span: %v -> %v", before, in)
	}

	m, _ = update(t, m, key("-"))
	out := m.deps.View.Bounds().LonRange()
	if out <= in {
		t.Fatalf("zoom out did not grow span: %v -> %v", in, out)
	}
}

func TestModeKeys(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, key("3"))
	if got := m.deps.Coordinator.Mode(); got != models.ModeSwell {
		t.Fatalf("mode key 3: got %v, want swell", got)
	}

	m, _ = update(t, m, key("m"))
	if got := m.deps.Coordinator.Mode(); got != models.ModeCurrent {
		t.Fatalf("mode cycle after swell: got %v, want current", got)
	}
}

func TestModeCycleWraps(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, key("5"))
	m, _ = update(t, m, key("m"))
	if got := m.deps.Coordinator.Mode(); got != models.ModeWind {
		t.Fatalf("mode cycle after water-temp: got %v, want wind", got)
	}
}

func TestForecastHourKeysClampAtZero(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, key("["))
	if got := m.deps.Coordinator.ForecastHour(); got != 0 {
		t.Fatalf("forecast hour went below zero: %d", got)
	}

	m, _ = update(t, m, key("]"))
	m, _ = update(t, m, key("]"))
	if got := m.deps.Coordinator.ForecastHour(); got != 2*forecastHourStep {
		t.Fatalf("forecast hour: got %d, want %d", got, 2*forecastHourStep)
	}
}

func TestUnitsToggle(t *testing.T) {
	m := newTestModel(t)
	if m.deps.Imperial {
		t.Fatal("expected metric units by default")
	}

	m, _ = update(t, m, key("u"))
	if !m.deps.Imperial {
		t.Fatal("expected imperial units after toggle")
	}

	m, _ = update(t, m, key("u"))
	if m.deps.Imperial {
		t.Fatal("expected metric units after second toggle")
	}
}

func TestOverlayToggle(t *testing.T) {
	m := newTestModel(t)
	m.Init()

	m, _ = update(t, m, key("o"))
	if m.enabled {
		t.Fatal("expected overlay disabled")
	}
	if m.deps.Coordinator.Samples() != nil {
		t.Fatal("expected cached samples discarded on disable")
	}

	m, _ = update(t, m, key("o"))
	if !m.enabled {
		t.Fatal("expected overlay re-enabled")
	}
}

func TestWindowSizeResizesViewport(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	tr := m.deps.View.Transform()
	if tr.Width != 118 || tr.Height != 40-chromeRows {
		t.Fatalf("viewport size: got %dx%d, want %dx%d", tr.Width, tr.Height, 118, 40-chromeRows)
	}
}

func TestLoadingMessageDrivesSpinner(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, loadingChangedMsg{loading: true})
	if !m.loading {
		t.Fatal("expected loading state")
	}
	if cmd == nil {
		t.Fatal("expected spinner tick command")
	}

	m, cmd = update(t, m, loadingChangedMsg{loading: false})
	if m.loading {
		t.Fatal("expected loading cleared")
	}
	if cmd != nil {
		t.Fatal("expected no command when loading stops")
	}
}

func TestErrorMessageShownInStatus(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, overlayErrorMsg{message: "Weather service timed out, will retry"})

	if !strings.Contains(m.View(), "timed out") {
		t.Fatal("expected error message in status line")
	}
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before resize: got %q", got)
	}
}

func TestViewShowsActiveModeTabs(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	for _, label := range []string{"Wind", "Waves", "Swell", "Current", "Water Temp"} {
		if !strings.Contains(view, label) {
			t.Fatalf("mode tab %q missing from view", label)
		}
	}
}

func TestRefreshMessageRefetches(t *testing.T) {
	m := newTestModel(t)
	m.Init()

	deadline := time.After(2 * time.Second)
	for m.deps.Coordinator.Samples() == nil {
		select {
		case <-deadline:
			t.Fatal("initial fetch never committed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	m, _ = update(t, m, RefreshMsg{})
	// Refresh resets the cache key so the same viewport fetches again.
	if m.deps.Coordinator.Samples() == nil {
		t.Fatal("refresh dropped cached samples")
	}
}
