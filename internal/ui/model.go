package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/marine-overlay/internal/config"
	"github.com/ngmaloney/marine-overlay/internal/fetch"
	"github.com/ngmaloney/marine-overlay/internal/models"
	"github.com/ngmaloney/marine-overlay/internal/overlay"
	"github.com/ngmaloney/marine-overlay/internal/viewport"
)

// chromeRows is the screen space taken by the header, status and help
// lines plus the map border.
const chromeRows = 5

// panStep is the pan distance per keypress as a fraction of the view.
const panStep = 0.15

// maxForecastHour caps the forecast hour picker. Hours step by 3 to
// match the upstream model output cadence.
const (
	maxForecastHour  = 120
	forecastHourStep = 3
)

// Deps are the collaborators the model wires together. PrefStore and
// MaskFallback may be nil.
type Deps struct {
	Config      *config.Config
	Prefs       *config.PrefStore
	Coordinator *fetch.Coordinator
	View        *viewport.Viewport
	Surface     *Surface
	Renderer    *overlay.Renderer
	Imperial    bool
}

// Model is the dashboard's bubbletea model. The overlay engine runs
// outside the event loop; the model translates key events into engine
// calls and engine callbacks arrive back as messages.
type Model struct {
	deps Deps

	width   int
	height  int
	enabled bool
	loading bool
	errMsg  string
	spinner spinner.Model
}

// NewModel assembles the dashboard model around pre-built collaborators.
func NewModel(deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		deps:    deps,
		enabled: true,
		spinner: s,
	}
}

// Init enables the overlay for the starting viewport.
func (m Model) Init() tea.Cmd {
	m.deps.Coordinator.Enable(m.deps.View.Bounds())
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		mapW, mapH := m.mapSize()
		m.deps.View.Resize(mapW, mapH)
		m.deps.Renderer.Resize(mapW, mapH)
		m.deps.Coordinator.ViewportSettled(m.deps.View.Bounds())
		return m, nil

	case loadingChangedMsg:
		m.loading = msg.loading
		m.deps.Renderer.SetLoading(msg.loading)
		if msg.loading {
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case overlayErrorMsg:
		m.errMsg = msg.message
		return m, nil

	case dataCommittedMsg:
		m.deps.Renderer.Invalidate()
		return m, nil

	case overlayFrameMsg:
		// The surface holds a fresh frame; View picks it up.
		return m, nil

	case RefreshMsg:
		m.deps.Coordinator.Refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.teardown()
		return m, tea.Quit

	case "left", "h":
		return m.pan(-panStep, 0), nil
	case "right", "l":
		return m.pan(panStep, 0), nil
	case "up", "k":
		return m.pan(0, panStep), nil
	case "down", "j":
		return m.pan(0, -panStep), nil

	case "+", "=":
		return m.zoom(func() { m.deps.View.ZoomIn() }), nil
	case "-", "_":
		return m.zoom(func() { m.deps.View.ZoomOut() }), nil

	case "]":
		return m.setForecastHour(m.deps.Coordinator.ForecastHour() + forecastHourStep), nil
	case "[":
		return m.setForecastHour(m.deps.Coordinator.ForecastHour() - forecastHourStep), nil

	case "m", "tab":
		return m.cycleMode(), nil
	case "1", "2", "3", "4", "5":
		idx := int(msg.String()[0] - '1')
		return m.setMode(models.DisplayModes[idx]), nil

	case "u":
		return m.toggleUnits(), nil

	case "o":
		return m.toggleOverlay(), nil

	case "r":
		m.deps.Coordinator.Refresh()
		return m, nil
	}
	return m, nil
}

// pan shifts the view and schedules a debounced fetch; the overlay keeps
// drawing from cached samples in the meantime.
func (m Model) pan(dx, dy float64) Model {
	m.deps.View.Pan(dx, dy)
	m.deps.Coordinator.ViewportSettled(m.deps.View.Bounds())
	m.deps.Renderer.Invalidate()
	return m
}

// zoom brackets the viewport change with the renderer's zoom handling:
// hide before, show and redraw immediately after, then settle.
func (m Model) zoom(change func()) Model {
	m.deps.Renderer.ZoomStarted()
	m.deps.Coordinator.ZoomStarted()
	change()
	m.deps.Renderer.ZoomEnded()
	m.deps.Coordinator.ViewportSettled(m.deps.View.Bounds())
	return m
}

func (m Model) setForecastHour(hour int) Model {
	if hour < 0 {
		hour = 0
	}
	if hour > maxForecastHour {
		hour = maxForecastHour
	}
	m.deps.Coordinator.SetForecastHour(hour)
	m.savePrefs()
	return m
}

func (m Model) cycleMode() Model {
	current := m.deps.Coordinator.Mode()
	for i, mode := range models.DisplayModes {
		if mode == current {
			return m.setMode(models.DisplayModes[(i+1)%len(models.DisplayModes)])
		}
	}
	return m.setMode(models.DisplayModes[0])
}

func (m Model) setMode(mode models.DisplayMode) Model {
	m.deps.Coordinator.SetMode(mode)
	m.deps.Renderer.Invalidate()
	m.savePrefs()
	return m
}

func (m Model) toggleUnits() Model {
	m.deps.Imperial = !m.deps.Imperial
	m.deps.Renderer.SetConverters(m.converters())
	m.savePrefs()
	return m
}

func (m Model) toggleOverlay() Model {
	if m.enabled {
		m.enabled = false
		m.deps.Coordinator.Disable()
		m.errMsg = ""
		m.loading = false
		m.deps.Renderer.SetLoading(false)
		m.deps.Renderer.Invalidate()
		return m
	}
	m.enabled = true
	m.deps.Coordinator.Enable(m.deps.View.Bounds())
	m.deps.Renderer.Invalidate()
	return m
}

func (m Model) converters() models.Converters {
	if m.deps.Imperial {
		return models.ImperialConverters()
	}
	return models.DefaultConverters()
}

func (m Model) savePrefs() {
	if m.deps.Prefs == nil {
		return
	}
	// Preference writes are best effort; the dashboard works without.
	_ = m.deps.Prefs.Save(config.Prefs{
		Mode:         m.deps.Coordinator.Mode(),
		ForecastHour: m.deps.Coordinator.ForecastHour(),
		Imperial:     m.deps.Imperial,
	})
}

func (m Model) teardown() {
	m.savePrefs()
	m.deps.Renderer.Close()
	m.deps.Coordinator.Disable()
}

func (m Model) mapSize() (int, int) {
	w := m.width - 2 // border columns
	h := m.height - chromeRows
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

// View renders the dashboard: mode tabs, the overlay map, a status line
// and help.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(mapStyle.Render(m.deps.Surface.View()))
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("←↑↓→ pan  +/- zoom  [/] hour  1-5/m mode  u units  o overlay  r refresh  q quit"))
	return b.String()
}

func (m Model) renderHeader() string {
	var tabs []string
	active := m.deps.Coordinator.Mode()
	for _, mode := range models.DisplayModes {
		if mode == active {
			tabs = append(tabs, activeModeTabStyle.Render(mode.Label()))
		} else {
			tabs = append(tabs, modeTabStyle.Render(mode.Label()))
		}
	}
	return titleStyle.Render("Marine Overlay") + "  " + strings.Join(tabs, " ")
}

func (m Model) renderStatus() string {
	if !m.enabled {
		return statusStyle.Render("Overlay off (press 'o' to enable)")
	}

	bounds := m.deps.View.Bounds()
	parts := []string{
		statusStyle.Render("Center: ") + statusValueStyle.Render(
			fmt.Sprintf("%.2f, %.2f", (bounds.South+bounds.North)/2, (bounds.West+bounds.East)/2)),
		statusStyle.Render("Hour: ") + statusValueStyle.Render(
			fmt.Sprintf("+%d", m.deps.Coordinator.ForecastHour())),
	}
	if res := m.deps.Coordinator.Resolution(); res > 0 {
		parts = append(parts, statusStyle.Render("Grid: ")+statusValueStyle.Render(
			fmt.Sprintf("%.2g°", res)))
	}
	if m.loading {
		parts = append(parts, m.spinner.View()+statusStyle.Render("fetching"))
	} else if m.errMsg != "" {
		parts = append(parts, errorStyle.Render(m.errMsg))
	}
	return strings.Join(parts, "   ")
}

