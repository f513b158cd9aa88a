// Package gui shows the swarm in a desktop window and follows the mouse.
package gui

import (
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/heartswarm/internal/colors"
	"github.com/san-kum/heartswarm/internal/input"
	"github.com/san-kum/heartswarm/internal/sim"
)

var (
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColAccent  = rl.NewColor(230, 10, 40, 255)
)

const maxTelemetry = 200

// Options configure the window.
type Options struct {
	FPS        int32
	Scale      float32
	Fade       float64
	Background string
}

type App struct {
	Swarm     *sim.Swarm
	Pointer   *input.Pointer
	Layer     *Layer
	Running   bool
	Telemetry []float64
	Opts      Options
}

func initWindow(w, h int32, fps int32) {
	rl.InitWindow(w, h, "heartswarm")
	rl.SetTargetFPS(fps)
	rl.SetExitKey(0)
}

// Run opens a window sized to the swarm canvas and blocks until it is
// closed.
func Run(s *sim.Swarm, opts Options) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	p := s.Settings()
	w, h := int32(p.Width*float64(opts.Scale)), int32(p.Height*float64(opts.Scale))

	initWindow(w, h, opts.FPS)
	defer rl.CloseWindow()

	app := NewApp(s, opts)
	defer app.Layer.Unload()
	app.RunLoop()
}

// NewApp attaches a mouse pointer to s. The window must already be open.
func NewApp(s *sim.Swarm, opts Options) *App {
	p := s.Settings()
	layer := NewLayer(int32(p.Width*float64(opts.Scale)), int32(p.Height*float64(opts.Scale)), opts.Scale)
	if opts.Fade > 0 {
		layer.Fade = opts.Fade
	}
	if opts.Background != "" {
		if bg, err := colors.Parse(opts.Background); err == nil {
			layer.Background = toColor(bg)
			layer.Wipe()
		} else {
			log.Printf("gui: background %q: %v", opts.Background, err)
		}
	}

	pointer := &input.Pointer{}
	s.SetPointer(pointer)
	return &App{
		Swarm:     s,
		Pointer:   pointer,
		Layer:     layer,
		Running:   true,
		Telemetry: make([]float64, 0, maxTelemetry),
		Opts:      opts,
	}
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsCursorOnScreen() {
		a.Pointer.Set(fromScreen(rl.GetMousePosition(), a.Layer.Scale))
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.Swarm.Reset()
		a.Layer.Wipe()
		a.Telemetry = a.Telemetry[:0]
	case rl.IsKeyPressed(rl.KeyC):
		a.Pointer.Clear()
	}

	if !a.Running {
		return
	}
	a.Swarm.Step(a.Layer)
	a.Telemetry = append(a.Telemetry, a.Swarm.MeanDistance())
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(a.Layer.Background)
	a.Layer.Draw()
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	rl.DrawText("heartswarm", 20, 20, 20, ColSelect)
	rl.DrawText(fmt.Sprintf("frame %d  swaps %d", a.Swarm.Time(), a.Swarm.Swaps()), 20, 46, 10, ColText)

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	rl.DrawText(status, w-100, 20, 16, col)

	a.DrawTelemetry(20, h-80, 200, 40)
	rl.DrawText("[SPACE] PAUSE  [R] RESET  [C] RELEASE  [Q] QUIT", 20, h-24, 10, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), w-60, h-24, 10, ColTextDim)
}

// DrawTelemetry plots the recent mean lead distance.
func (a *App) DrawTelemetry(x, y, width, height int32) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(x) + float32(i)/float32(len(a.Telemetry))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(y+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("d: %.1f", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 10, ColText)
}
