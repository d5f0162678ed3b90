// Package explorer is the interactive terminal view of the Mandelbrot set.
//
// The model owns the current viewport, evaluator parameters and palette.
// Each change starts a fresh paint pass in the background and cancels the
// previous one; a frame is only shown once its pass completes, and frames
// from superseded passes are dropped by generation number.
//
// Controls:
//
//	wheel          up zooms in, down zooms out, keeping the point under
//	               the pointer fixed (swapped with Config.InvertWheel)
//	+ / -          zoom about the center
//	arrows, hjkl   pan by a tenth of the view
//	space          double max_iterations
//	s              toggle smooth colouring
//	p              next palette
//	b              bookmark the current view
//	r              reset
//	q, esc         quit
package explorer

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/errors"
	"github.com/matzehuels/mandelview/pkg/fractal"
	"github.com/matzehuels/mandelview/pkg/palette"
	"github.com/matzehuels/mandelview/pkg/render"
	"github.com/matzehuels/mandelview/pkg/viewport"
)

// ZoomStep is the change in log10 zoom per wheel notch or key press.
const ZoomStep = 0.2

// PanFraction is the share of the view moved by one pan key.
const PanFraction = 10

// Captions shown while a pass runs and once it completes.
const (
	CaptionZoom    = "Zoom..."
	CaptionDeepen  = "Increasing max_iterations..."
	CaptionPaint   = "Painting..."
	CaptionDone    = "Done!"
	CaptionWaiting = "Waiting for terminal size..."
)

// Config is the explorer's starting state.
type Config struct {
	// Center and Width give the initial view. The grid size follows the
	// terminal.
	Center complex128
	Width  float64

	Params fractal.Params
	Smooth bool

	// Palettes are cycled with "p". The first one is used initially.
	Palettes []palette.Palette

	// Workers bounds paint concurrency; <= 0 uses every CPU.
	Workers int

	// Bookmarks receives views saved with "b". Nil disables saving.
	Bookmarks bookmark.Store

	// InvertWheel makes wheel up zoom out.
	InvertWheel bool
}

// Model is the bubbletea model.
type Model struct {
	cfg Config

	vp         viewport.Viewport
	params     fractal.Params
	smooth     bool
	paletteIdx int
	zoomRatio  float64

	cols, rows int
	sized      bool

	frame     *image.RGBA
	gen       uint64
	cancel    context.CancelFunc
	caption   string
	lastPaint time.Duration
	notice    string
}

// frameMsg carries a finished (or failed) paint pass.
type frameMsg struct {
	gen     uint64
	img     *image.RGBA
	elapsed time.Duration
	err     error
}

// bookmarkMsg reports the outcome of a bookmark save.
type bookmarkMsg struct {
	b   *bookmark.Bookmark
	err error
}

// New validates cfg and returns the initial model. Painting starts with the
// first window size message.
func New(cfg Config) (Model, error) {
	if len(cfg.Palettes) == 0 {
		p, err := palette.Builtin(palette.DefaultName, palette.DefaultSize)
		if err != nil {
			return Model{}, err
		}
		cfg.Palettes = []palette.Palette{p}
	}
	if err := cfg.Params.Validate(); err != nil {
		return Model{}, err
	}
	// A 1x1 placeholder grid until the terminal reports its size.
	vp, err := viewport.New(cfg.Center, cfg.Width, 1, 1)
	if err != nil {
		return Model{}, err
	}
	return Model{
		cfg:     cfg,
		vp:      vp,
		params:  cfg.Params,
		smooth:  cfg.Smooth,
		caption: CaptionWaiting,
	}, nil
}

// Viewport returns the current view.
func (m Model) Viewport() viewport.Viewport { return m.vp }

// Params returns the current evaluator parameters.
func (m Model) Params() fractal.Params { return m.params }

// Palette returns the active palette.
func (m Model) Palette() palette.Palette { return m.cfg.Palettes[m.paletteIdx] }

// Smooth reports whether smooth colouring is on.
func (m Model) Smooth() bool { return m.smooth }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmd := m.resize(msg.Width, msg.Height)
		return m, cmd

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		if !m.sized || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		x, y := cellCenter(msg.X, msg.Y)
		dir := 1.0
		if m.cfg.InvertWheel {
			dir = -1
		}
		var cmd tea.Cmd
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			cmd = m.zoom(dir, x, y)
		case tea.MouseButtonWheelDown:
			cmd = m.zoom(-dir, x, y)
		}
		return m, cmd

	case frameMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.cancel = nil
		if msg.err != nil {
			if !stderrors.Is(msg.err, context.Canceled) {
				m.notice = errors.UserMessage(msg.err)
			}
			return m, nil
		}
		m.frame = msg.img
		m.lastPaint = msg.elapsed
		m.caption = CaptionDone

	case bookmarkMsg:
		if msg.err != nil {
			m.notice = "bookmark failed: " + errors.UserMessage(msg.err)
		} else {
			m.notice = fmt.Sprintf("saved bookmark %q", msg.b.Name)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.stop()
		return tea.Quit
	}
	if !m.sized {
		return nil
	}

	stepX := max(m.vp.PixelWidth/PanFraction, 1)
	stepY := max(m.vp.PixelHeight/PanFraction, 1)
	cx, cy := float64(m.vp.PixelWidth)/2, float64(m.vp.PixelHeight)/2

	switch msg.String() {
	case " ":
		deeper := m.params.Deepen()
		if deeper == m.params {
			m.notice = fmt.Sprintf("max_iterations is at its limit (%d)", m.params.MaxIterations)
			return nil
		}
		m.params = deeper
		return m.repaint(CaptionDeepen)
	case "up", "k":
		m.vp = m.vp.Pan(0, -stepY)
	case "down", "j":
		m.vp = m.vp.Pan(0, stepY)
	case "left", "h":
		m.vp = m.vp.Pan(-stepX, 0)
	case "right", "l":
		m.vp = m.vp.Pan(stepX, 0)
	case "+", "=":
		return m.zoom(1, cx, cy)
	case "-", "_":
		return m.zoom(-1, cx, cy)
	case "s":
		m.smooth = !m.smooth
	case "p":
		m.paletteIdx = (m.paletteIdx + 1) % len(m.cfg.Palettes)
	case "r":
		return m.reset()
	case "b":
		return m.saveBookmark()
	default:
		return nil
	}
	return m.repaint(CaptionPaint)
}

// resize fits the pixel grid to the terminal: one column per cell and two
// rows per cell, minus the status line.
func (m *Model) resize(width, height int) tea.Cmd {
	cols := max(width, 1)
	rows := max(height-1, 1)
	vp, err := m.vp.Resize(cols, 2*rows)
	if err != nil {
		m.notice = errors.UserMessage(err)
		return nil
	}
	m.vp = vp
	m.cols, m.rows = cols, rows
	m.sized = true
	return m.repaint(CaptionPaint)
}

// zoom moves the zoom ratio by one step in dir and keeps the plane point
// under pixel (x, y) in place. The width always derives from the ratio so
// repeated zooming does not accumulate rounding.
func (m *Model) zoom(dir float64, x, y float64) tea.Cmd {
	ratio := m.zoomRatio + ZoomStep*dir
	vp, err := m.vp.ZoomTo(x, y, m.cfg.Width*math.Pow(10, -ratio))
	if err != nil {
		m.notice = errors.UserMessage(err)
		return nil
	}
	m.zoomRatio = ratio
	m.vp = vp
	return m.repaint(CaptionZoom)
}

func (m *Model) reset() tea.Cmd {
	vp, err := viewport.New(m.cfg.Center, m.cfg.Width, m.vp.PixelWidth, m.vp.PixelHeight)
	if err != nil {
		m.notice = errors.UserMessage(err)
		return nil
	}
	m.vp = vp
	m.params = m.cfg.Params
	m.smooth = m.cfg.Smooth
	m.paletteIdx = 0
	m.zoomRatio = 0
	m.notice = ""
	return m.repaint(CaptionPaint)
}

func (m *Model) saveBookmark() tea.Cmd {
	store := m.cfg.Bookmarks
	if store == nil {
		m.notice = "bookmarks are disabled"
		return nil
	}
	name := "explore " + time.Now().Format("2006-01-02 15:04:05")
	b, err := bookmark.New(name, m.vp.Center, m.vp.Width, m.params.MaxIterations)
	if err != nil {
		m.notice = errors.UserMessage(err)
		return nil
	}
	b.Smooth = m.smooth
	b.Palette = m.Palette().Name()
	return func() tea.Msg {
		return bookmarkMsg{b: b, err: store.Save(context.Background(), b)}
	}
}

// repaint cancels the running pass, if any, and starts a new one over a
// snapshot of the current state.
func (m *Model) repaint(caption string) tea.Cmd {
	m.stop()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.gen++
	m.caption = caption

	gen := m.gen
	workers := m.cfg.Workers
	pass := render.Pass{
		Viewport: m.vp,
		Params:   m.params,
		Palette:  m.Palette(),
		Smooth:   m.smooth,
		Samples:  1,
	}
	return func() tea.Msg {
		start := time.Now()
		img, err := render.Paint(ctx, pass, render.WithWorkers(workers))
		return frameMsg{gen: gen, img: img, elapsed: time.Since(start), err: err}
	}
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// cellCenter maps a terminal cell to the pixel position at its middle. A
// cell covers one column and two rows of pixels.
func cellCenter(col, row int) (x, y float64) {
	return float64(col) + 0.5, float64(2*row) + 1
}

// Run starts the explorer full screen with mouse support and returns the
// final model once the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) (Model, error) {
	m, err := New(cfg)
	if err != nil {
		return Model{}, err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	m.stop()
	if err != nil {
		return m, fmt.Errorf("explorer: %w", err)
	}
	return m, nil
}
