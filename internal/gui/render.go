package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/heartswarm/internal/colors"
	"github.com/san-kum/heartswarm/internal/dynamo"
)

// Layer is a persistent render target the swarm draws into. Clear fades
// it by drawing the background at Fade opacity instead of wiping it.
type Layer struct {
	Target     rl.RenderTexture2D
	Background rl.Color
	Fade       float64
	Scale      float32
}

func NewLayer(width, height int32, scale float32) *Layer {
	l := &Layer{
		Target:     rl.LoadRenderTexture(width, height),
		Background: rl.Black,
		Fade:       0.2,
		Scale:      scale,
	}
	rl.BeginTextureMode(l.Target)
	rl.ClearBackground(l.Background)
	rl.EndTextureMode()
	return l
}

func (l *Layer) Unload() { rl.UnloadRenderTexture(l.Target) }

// Wipe clears the layer to the background.
func (l *Layer) Wipe() {
	rl.BeginTextureMode(l.Target)
	rl.ClearBackground(l.Background)
	rl.EndTextureMode()
}

func (l *Layer) Clear() {
	rl.BeginTextureMode(l.Target)
	rl.DrawRectangle(0, 0, l.Target.Texture.Width, l.Target.Texture.Height, rl.ColorAlpha(l.Background, float32(l.Fade)))
	rl.EndTextureMode()
}

func (l *Layer) Render(ds []dynamo.Drawable) {
	rl.BeginTextureMode(l.Target)
	for _, d := range ds {
		pos := d.Pos()
		if !pos.IsValid() {
			continue
		}
		c, err := colors.Parse(d.Color())
		if err != nil {
			continue
		}
		rl.DrawCircleV(toScreen(pos, l.Scale), float32(d.Radius())*l.Scale, toColor(c))
	}
	rl.EndTextureMode()
}

// Draw blits the layer to the screen. Render textures are stored upside
// down, hence the negative source height.
func (l *Layer) Draw() {
	w, h := float32(l.Target.Texture.Width), float32(l.Target.Texture.Height)
	rl.DrawTextureRec(l.Target.Texture, rl.NewRectangle(0, 0, w, -h), rl.NewVector2(0, 0), rl.White)
}

func toScreen(p dynamo.Vec2, scale float32) rl.Vector2 {
	return rl.NewVector2(float32(p.X)*scale, float32(p.Y)*scale)
}

func fromScreen(v rl.Vector2, scale float32) dynamo.Vec2 {
	return dynamo.V(float64(v.X/scale), float64(v.Y/scale))
}

func toColor(c colors.RGBA) rl.Color {
	r, g, b := c.Color.Clamped().RGB255()
	return rl.NewColor(r, g, b, uint8(c.A*255+0.5))
}
