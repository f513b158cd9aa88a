package viz

import (
	"fmt"
	"image"
	"image/gif"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/heartswarm/internal/dynamo"
	"github.com/san-kum/heartswarm/internal/export"
	"github.com/san-kum/heartswarm/internal/input"
	"github.com/san-kum/heartswarm/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 300
	maxGIFFrames    = 600
	minParamStep    = 0.001

	// canvas offset inside the view, from the canvas style padding
	canvasPadX = 2
	canvasPadY = 1
)

type TickMsg time.Time

// Options configure the live view.
type Options struct {
	FPS        int
	Cols, Rows int
	Fade       float64
	Background string
	Theme      string
	Stepper    string
	// OutDir receives snapshots and recordings.
	OutDir string
}

// renderers fans a frame out to several renderers.
type renderers []sim.Renderer

func (rs renderers) Clear() {
	for _, r := range rs {
		r.Clear()
	}
}

func (rs renderers) Render(ds []dynamo.Drawable) {
	for _, r := range rs {
		r.Render(ds)
	}
}

// Model is the live TUI: it steps the swarm on every tick, feeds mouse
// motion into the pointer and draws the swarm on a braille canvas next to a
// stats sidebar.
type Model struct {
	swarm   *sim.Swarm
	pointer *input.Pointer
	canvas  *Canvas
	svg     *export.SVGRenderer
	opts    Options

	theme    Theme
	styles   styles
	keys     keyMap
	help     help.Model
	progress progress.Model

	running       bool
	showHelp      bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	distance      []float64
	recording     bool
	frames        []*image.Paletted
	notice        string
}

// NewModel attaches pointer to the swarm and builds the view around it.
func NewModel(s *sim.Swarm, pointer *input.Pointer, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Cols <= 0 {
		opts.Cols = defaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = defaultRows
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	s.SetPointer(pointer)

	settings := s.Settings()
	canvas := NewCanvas(opts.Cols, opts.Rows, settings.Width, settings.Height)
	if opts.Fade > 0 {
		canvas.Fade = opts.Fade
	}
	svg := export.NewSVGRenderer(settings.Width, settings.Height)
	svg.Fade = canvas.Fade
	if opts.Background != "" {
		if err := canvas.SetBackground(opts.Background); err != nil {
			log.Printf("viz: background %q: %v", opts.Background, err)
		} else {
			svg.Background = opts.Background
		}
	}

	params := s.Params()
	initial := make(map[string]float64, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		initial[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	theme := GetTheme(opts.Theme)
	return Model{
		swarm:   s,
		pointer: pointer,
		canvas:  canvas,
		svg:     svg,
		opts:    opts,
		theme:   theme,
		styles:  newStyles(theme),
		keys:    defaultKeys(),
		help:    help.New(),
		progress: progress.New(
			progress.WithScaledGradient(string(theme.Primary), string(theme.Accent)),
			progress.WithoutPercentage(),
			progress.WithWidth(20),
		),
		running:       true,
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
		distance:      make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionMotion || msg.Action == tea.MouseActionPress {
			m.movePointer(msg.X, msg.Y)
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.running = !m.running
		case key.Matches(msg, m.keys.Reset):
			m.reset()
		case key.Matches(msg, m.keys.Center):
			m.pointer.Clear()
		case key.Matches(msg, m.keys.NextParam):
			m.cycleParam()
		case key.Matches(msg, m.keys.Increase):
			m.adjustParam(1.05)
		case key.Matches(msg, m.keys.Decrease):
			m.adjustParam(0.95)
		case key.Matches(msg, m.keys.Theme):
			m.setTheme(NextTheme(m.theme.Name))
		case key.Matches(msg, m.keys.Snapshot):
			m.snapshot()
		case key.Matches(msg, m.keys.Record):
			m.toggleRecording()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
			if m.recording {
				m.captureFrame()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// resize fits the canvas into the terminal beside the sidebar.
func (m *Model) resize(w, h int) {
	cols := w - 2*canvasPadX - sidebarWidth - 1
	rows := h - 2*canvasPadY - 2
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}
	m.canvas.Resize(cols, rows)
	m.help.Width = w
}

func (m *Model) mapper() input.CellMapper {
	return input.CellMapper{
		Cols:   m.canvas.Cols,
		Rows:   m.canvas.Rows,
		Width:  m.canvas.Width,
		Height: m.canvas.Height,
	}
}

// movePointer updates the pointer from a terminal cell. Cells outside the
// canvas leave it where it was.
func (m *Model) movePointer(x, y int) {
	col, row := x-canvasPadX, y-canvasPadY
	if col < 0 || row < 0 || col >= m.canvas.Cols || row >= m.canvas.Rows {
		return
	}
	m.pointer.Set(m.mapper().Map(col, row))
}

func (m *Model) step() {
	m.swarm.Step(renderers{m.canvas, m.svg})
	m.distance = append(m.distance, m.swarm.MeanDistance())
	if len(m.distance) > historyCapacity {
		m.distance = m.distance[1:]
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	name := m.paramKeys[m.selected]
	cur := m.params[name]
	val := cur * factor
	// scaling alone cannot leave or reach zero
	switch {
	case factor > 1 && cur < minParamStep:
		val = cur + minParamStep
	case factor < 1 && val < minParamStep:
		val = 0
	}
	if err := m.swarm.SetParam(name, val); err != nil {
		m.notice = err.Error()
		return
	}
	m.params[name] = val
}

// reset restarts the swarm with the initial parameters.
func (m *Model) reset() {
	for name, v := range m.initialParams {
		if err := m.swarm.SetParam(name, v); err == nil {
			m.params[name] = v
		}
	}
	m.swarm.Reset()
	m.canvas.Wipe()
	bg, fade := m.svg.Background, m.svg.Fade
	m.svg = export.NewSVGRenderer(m.canvas.Width, m.canvas.Height)
	m.svg.Background, m.svg.Fade = bg, fade
	m.distance = m.distance[:0]
	m.notice = ""
}

func (m *Model) setTheme(t Theme) {
	m.theme = t
	m.styles = newStyles(t)
	m.progress = progress.New(
		progress.WithScaledGradient(string(t.Primary), string(t.Accent)),
		progress.WithoutPercentage(),
		progress.WithWidth(20),
	)
}

func (m *Model) outPath(ext string) string {
	return filepath.Join(m.opts.OutDir, fmt.Sprintf("heartswarm-%06d.%s", m.swarm.Time(), ext))
}

// snapshot writes the recent frames as SVG.
func (m *Model) snapshot() {
	path := m.outPath("svg")
	if err := m.svg.Save(path); err != nil {
		log.Printf("viz: snapshot: %v", err)
		m.notice = "snapshot failed: " + err.Error()
		return
	}
	log.Printf("viz: snapshot saved to %s", path)
	m.notice = "saved " + path
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.saveGIF()
		return
	}
	m.recording = true
	m.frames = make([]*image.Paletted, 0, maxGIFFrames)
	m.notice = ""
}

func (m *Model) captureFrame() {
	m.frames = append(m.frames, m.canvas.Image(4, 4))
	if len(m.frames) >= maxGIFFrames {
		m.saveGIF()
	}
}

// saveGIF ends the recording and writes it out.
func (m *Model) saveGIF() {
	frames := m.frames
	m.recording = false
	m.frames = nil
	if len(frames) == 0 {
		return
	}

	delay := 100 / m.opts.FPS
	if delay < 2 {
		delay = 2
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	path := m.outPath("gif")
	f, err := os.Create(path)
	if err != nil {
		log.Printf("viz: recording: %v", err)
		m.notice = "recording failed: " + err.Error()
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		log.Printf("viz: recording: %v", err)
		m.notice = "recording failed: " + err.Error()
		return
	}
	log.Printf("viz: %d frames recorded to %s", len(frames), path)
	m.notice = "saved " + path
}

func (m Model) status() string {
	switch {
	case m.recording:
		return m.styles.recording.Render(fmt.Sprintf("● REC %d", len(m.frames)))
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

func (m Model) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render("HEARTSWARM") + "\n")
	s.WriteString(m.status() + "\n")
	if m.recording {
		s.WriteString(m.progress.ViewAs(float64(len(m.frames))/maxGIFFrames) + "\n")
	}
	s.WriteString("\n")

	if len(m.distance) > 1 {
		chart := asciigraph.Plot(m.distance, asciigraph.Height(4), asciigraph.Width(24), asciigraph.Caption("mean distance"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	f := m.swarm.Frame()
	s.WriteString(st.row("Frame", fmt.Sprintf("%d", f.Time)))
	s.WriteString(st.row("Distance", fmt.Sprintf("%.2f", m.swarm.MeanDistance())))
	s.WriteString(st.row("Energy", fmt.Sprintf("%.3f", f.Energy)))
	s.WriteString(st.row("Swaps", fmt.Sprintf("%d", f.Swaps)))
	if p, ok := m.swarm.Pointer(); ok {
		s.WriteString(st.row("Pointer", fmt.Sprintf("%.0f, %.0f", p.X, p.Y)))
	} else {
		s.WriteString(st.row("Pointer", "unset"))
	}
	if m.opts.Stepper != "" {
		s.WriteString(st.row("Stepper", m.opts.Stepper))
	}
	s.WriteString(st.row("Theme", m.theme.Name))

	s.WriteString("\nPARAMETERS\n")
	for i, name := range m.paramKeys {
		line := formatParam(name, m.params[name], m.initialParams[name])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}

	if m.notice != "" {
		s.WriteString("\n" + st.notice.Render(m.notice) + "\n")
	}

	m.help.ShowAll = m.showHelp
	s.WriteString("\n" + m.help.View(m.keys))

	canvasView := st.canvas.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.sidebar.Render(s.String()))
}
