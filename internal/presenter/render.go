// Package presenter is the reference consumer of the wire buffer: it decodes
// a published frame offset-by-offset from header capacities and draws it
// with a software canvas. It exists to prove the layout is self-describing
// and doubles as a debug view. The production GPU renderer is external.
package presenter

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"zap-engine/internal/protocol"
)

// palette maps effect color indices to RGB. Indices past the end wrap.
var palette = [][3]float64{
	{1.00, 1.00, 1.00},
	{1.00, 0.85, 0.30},
	{1.00, 0.55, 0.10},
	{0.95, 0.25, 0.15},
	{0.40, 0.75, 1.00},
	{0.55, 0.95, 0.55},
	{0.80, 0.40, 1.00},
	{0.60, 0.60, 0.65},
}

// atlasTints colors instances by atlas id in the debug view, where no real
// textures are loaded.
var atlasTints = [][3]float64{
	{0.35, 0.65, 0.95},
	{0.95, 0.70, 0.30},
	{0.55, 0.90, 0.55},
	{0.90, 0.45, 0.75},
}

// Renderer draws decoded frames into a raster canvas.
type Renderer struct {
	width  int
	height int
	dc     *gg.Context

	// AtlasGrids, when set from the manifest, lets the renderer flag sprite
	// cells outside the atlas grid with the magenta placeholder.
	AtlasGrids [][2]uint32
}

// NewRenderer creates a renderer with a fixed output size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:  width,
		height: height,
		dc:     gg.NewContext(width, height),
	}
}

// RenderFrame draws one decoded frame and returns nothing; use SavePNG to
// persist the canvas. Draw order follows the contract: layer batches in
// table order, then SDF shapes, vector triangles, effects, lights.
func (r *Renderer) RenderFrame(fr *protocol.FrameReader) {
	dc := r.dc
	worldW, worldH := fr.WorldSize()
	if worldW <= 0 || worldH <= 0 {
		worldW, worldH = float32(r.width), float32(r.height)
	}
	sx := float64(r.width) / float64(worldW)
	sy := float64(r.height) / float64(worldH)

	ar, ag, ab := fr.Ambient()
	dc.SetRGB(0.06*float64(ar), 0.06*float64(ag), 0.08*float64(ab))
	dc.Clear()

	// Instances, batch by batch: the atlas id lives in the batch record.
	batches := fr.LayerBatchCount()
	for bi := 0; bi < batches; bi++ {
		batch := fr.LayerBatchAt(bi)
		tint := atlasTints[batch.Atlas%len(atlasTints)]
		for i := batch.Start; i < batch.End; i++ {
			in := fr.InstanceAt(i)
			r.drawInstance(dc, in, tint, sx, sy)
		}
	}
	// Without batches (zero sprites or legacy frames) nothing to draw here.

	// SDF shapes.
	for i := 0; i < fr.SDFCount(); i++ {
		r.drawSDF(dc, fr.SDFAt(i), sx, sy)
	}

	// Vector triangles.
	for i := 0; i+2 < fr.VectorVertexCount(); i += 3 {
		v0 := fr.VectorVertexAt(i)
		v1 := fr.VectorVertexAt(i + 1)
		v2 := fr.VectorVertexAt(i + 2)
		dc.MoveTo(float64(v0.X)*sx, float64(v0.Y)*sy)
		dc.LineTo(float64(v1.X)*sx, float64(v1.Y)*sy)
		dc.LineTo(float64(v2.X)*sx, float64(v2.Y)*sy)
		dc.ClosePath()
		dc.SetRGBA(float64(v0.R), float64(v0.G), float64(v0.B), float64(v0.A))
		dc.Fill()
	}

	// Effects triangles: (x, y, color_index, u, v).
	for i := 0; i+2 < fr.EffectsVertexCount(); i += 3 {
		v0 := fr.EffectsVertexAt(i)
		v1 := fr.EffectsVertexAt(i + 1)
		v2 := fr.EffectsVertexAt(i + 2)
		c := palette[int(v0[2])%len(palette)]
		dc.MoveTo(float64(v0[0])*sx, float64(v0[1])*sy)
		dc.LineTo(float64(v1[0])*sx, float64(v1[1])*sy)
		dc.LineTo(float64(v2[0])*sx, float64(v2[1])*sy)
		dc.ClosePath()
		dc.SetRGBA(c[0], c[1], c[2], 0.9)
		dc.Fill()
	}

	// Lights as soft radial discs.
	for i := 0; i < fr.LightCount(); i++ {
		l := fr.LightAt(i)
		grad := gg.NewRadialGradient(
			float64(l.X)*sx, float64(l.Y)*sy, 0,
			float64(l.X)*sx, float64(l.Y)*sy, float64(l.Radius)*sx,
		)
		intensity := float64(l.Intensity)
		if intensity > 1 {
			intensity = 1
		}
		grad.AddColorStop(0, colorWithAlpha(float64(l.R), float64(l.G), float64(l.B), 0.35*intensity))
		grad.AddColorStop(1, colorWithAlpha(float64(l.R), float64(l.G), float64(l.B), 0))
		dc.SetFillStyle(grad)
		dc.DrawCircle(float64(l.X)*sx, float64(l.Y)*sy, float64(l.Radius)*sx)
		dc.Fill()
	}
}

// drawInstance draws one sprite slot as a rotated, scaled cell rectangle.
// Cells outside the known atlas grid get the magenta placeholder.
func (r *Renderer) drawInstance(dc *gg.Context, in protocol.Instance, tint [3]float64, sx, sy float64) {
	size := float64(in.Scale)
	if size <= 0 {
		size = 1
	}
	w := size * float64(in.CellSpan) * sx
	h := size * sy

	dc.Push()
	dc.Translate(float64(in.X)*sx, float64(in.Y)*sy)
	dc.Rotate(float64(in.Rotation))
	if r.missingCell(in) {
		dc.SetRGBA(1, 0, 1, float64(in.Alpha)) // magenta placeholder
	} else {
		dc.SetRGBA(tint[0], tint[1], tint[2], float64(in.Alpha))
	}
	dc.DrawRectangle(-w/2, -h/2, w, h)
	dc.Fill()
	dc.Pop()
}

// missingCell checks the sprite cell against the manifest atlas grids, when
// the caller provided them.
func (r *Renderer) missingCell(in protocol.Instance) bool {
	if len(r.AtlasGrids) == 0 {
		return false
	}
	// The instance doesn't carry its atlas id; the debug view checks the
	// cell against the largest grid, which catches out-of-range bakes.
	var cols, rows uint32
	for _, g := range r.AtlasGrids {
		if g[0] > cols {
			cols = g[0]
		}
		if g[1] > rows {
			rows = g[1]
		}
	}
	return uint32(in.SpriteCol) >= cols || uint32(in.AtlasRow) >= rows
}

func (r *Renderer) drawSDF(dc *gg.Context, s protocol.SDFInstance, sx, sy float64) {
	dc.Push()
	dc.Translate(float64(s.X)*sx, float64(s.Y)*sy)
	dc.Rotate(float64(s.Rotation))
	dc.SetRGB(float64(s.R), float64(s.G), float64(s.B))

	radius := float64(s.Radius) * sx
	halfH := float64(s.HalfHeight) * sy
	switch int(s.ShapeType) {
	case 1: // capsule
		dc.DrawRoundedRectangle(-radius, -halfH-radius, radius*2, (halfH+radius)*2, radius)
	case 2: // rounded box
		corner := float64(s.Extra) * sx
		dc.DrawRoundedRectangle(-radius, -halfH, radius*2, halfH*2, corner)
	default: // sphere
		dc.DrawCircle(0, 0, radius)
	}
	dc.Fill()

	if s.Emissive > 0 {
		dc.SetRGBA(float64(s.R), float64(s.G), float64(s.B), math.Min(float64(s.Emissive), 1)*0.4)
		dc.DrawCircle(0, 0, radius*1.5)
		dc.Fill()
	}
	dc.Pop()
}

// SavePNG writes the canvas to path.
func (r *Renderer) SavePNG(path string) error {
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("presenter: save %s: %w", path, err)
	}
	return nil
}

func colorWithAlpha(r, g, b, a float64) colorRGBA {
	return colorRGBA{r, g, b, a}
}

// colorRGBA adapts float components to the color.Color interface gg expects
// in gradients.
type colorRGBA struct{ r, g, b, a float64 }

func (c colorRGBA) RGBA() (uint32, uint32, uint32, uint32) {
	return uint32(c.r * c.a * 0xffff), uint32(c.g * c.a * 0xffff), uint32(c.b * c.a * 0xffff), uint32(c.a * 0xffff)
}
