package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/marine-overlay/internal/overlay"
)

// Surface renders overlay frames into a character grid. It implements
// overlay.Surface for the terminal: glyphs and labels are placed at cell
// coordinates and opacity maps to faint styling, since terminals have no
// alpha channel.
type Surface struct {
	mu       sync.Mutex
	attached bool
	width    int
	height   int
	frame    overlay.Frame

	// onDraw is called after each frame lands so the host event loop
	// can repaint.
	onDraw func()
}

// NewSurface creates a detached surface of the given size.
func NewSurface(width, height int, onDraw func()) *Surface {
	return &Surface{width: width, height: height, onDraw: onDraw}
}

// Attach marks the surface live.
func (s *Surface) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = true
}

// Detach clears the surface; subsequent Views render empty.
func (s *Surface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	s.frame = overlay.Frame{}
}

// Resize changes the grid size.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

// Size returns the current grid size in cells.
func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Draw stores the frame and nudges the host to repaint.
func (s *Surface) Draw(frame overlay.Frame) {
	s.mu.Lock()
	s.frame = frame
	onDraw := s.onDraw
	s.mu.Unlock()
	if onDraw != nil {
		onDraw()
	}
}

type surfaceCell struct {
	ch    rune
	color string
	faint bool
}

// View renders the last frame as terminal rows.
func (s *Surface) View() string {
	s.mu.Lock()
	frame := s.frame
	width, height := s.width, s.height
	attached := s.attached
	s.mu.Unlock()

	grid := make([][]surfaceCell, height)
	for y := range grid {
		grid[y] = make([]surfaceCell, width)
		for x := range grid[y] {
			grid[y][x] = surfaceCell{ch: ' '}
		}
	}

	if attached && frame.Visible {
		faint := frame.Opacity < 0.85
		for _, cmd := range frame.Commands {
			x, y := int(cmd.X+0.5), int(cmd.Y+0.5)
			place(grid, x, y, cmd.Glyph, cmd.Color, faint)
			text := cmd.Label
			if cmd.SubLabel != "" {
				text += " " + cmd.SubLabel
			}
			for i, ch := range text {
				place(grid, x+1+i, y, ch, cmd.Color, true)
			}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderRow(row))
	}
	return b.String()
}

func place(grid [][]surfaceCell, x, y int, ch rune, color string, faint bool) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = surfaceCell{ch: ch, color: color, faint: faint}
}

// renderRow batches runs of identically styled cells into one lipgloss
// render call to keep the frame cheap.
func renderRow(row []surfaceCell) string {
	var b strings.Builder
	var run strings.Builder
	var runStyle surfaceCell
	flush := func() {
		if run.Len() == 0 {
			return
		}
		text := run.String()
		if runStyle.color == "" {
			b.WriteString(text)
		} else {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(runStyle.color))
			if runStyle.faint {
				style = style.Faint(true)
			}
			b.WriteString(style.Render(text))
		}
		run.Reset()
	}
	for _, cell := range row {
		if run.Len() > 0 && (cell.color != runStyle.color || cell.faint != runStyle.faint) {
			flush()
		}
		runStyle = cell
		run.WriteRune(cell.ch)
	}
	flush()
	return b.String()
}
