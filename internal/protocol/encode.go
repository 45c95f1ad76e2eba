package protocol

// FrameWriter packs one frame into the buffer. Appends past a section's
// capacity clamp: the excess is dropped and the section count stays at
// capacity, so the consumer always sees a consistent (if lossy) frame.
// Truncation is surfaced through Truncated for metrics.
type FrameWriter struct {
	layout Layout
	buf    *Buffer

	instances      int
	effectsVerts   int
	sounds         int
	events         int
	sdfs           int
	vectorVerts    int
	batches        int
	lights         int
	truncated      bool
}

// NewFrameWriter binds a writer to a buffer laid out with l.
func NewFrameWriter(l Layout, buf *Buffer) *FrameWriter {
	return &FrameWriter{layout: l, buf: buf}
}

// Reset clears the per-frame counters. Section payload cells are overwritten
// lazily; only counters matter for consistency.
func (w *FrameWriter) Reset() {
	w.instances = 0
	w.effectsVerts = 0
	w.sounds = 0
	w.events = 0
	w.sdfs = 0
	w.vectorVerts = 0
	w.batches = 0
	w.lights = 0
	w.truncated = false
}

// Truncated reports whether any append was clamped this frame.
func (w *FrameWriter) Truncated() bool {
	return w.truncated
}

// Per-frame counters, readable after the encode pass for stats.
func (w *FrameWriter) InstanceCount() int      { return w.instances }
func (w *FrameWriter) EffectsVertexCount() int { return w.effectsVerts }
func (w *FrameWriter) SoundCount() int         { return w.sounds }
func (w *FrameWriter) EventCount() int         { return w.events }
func (w *FrameWriter) SDFCount() int           { return w.sdfs }
func (w *FrameWriter) VectorVertexCount() int  { return w.vectorVerts }
func (w *FrameWriter) LayerBatchCount() int    { return w.batches }
func (w *FrameWriter) LightCount() int         { return w.lights }

// AppendInstance writes one sprite instance. Returns false when clamped.
func (w *FrameWriter) AppendInstance(in Instance) bool {
	if w.instances >= w.layout.Caps.MaxInstances {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.InstanceOffset+w.instances*StrideInstance:]
	d[0] = in.X
	d[1] = in.Y
	d[2] = in.Rotation
	d[3] = in.Scale
	d[4] = in.SpriteCol
	d[5] = in.Alpha
	d[6] = in.CellSpan
	d[7] = in.AtlasRow
	w.instances++
	return true
}

// AppendSDF writes one SDF instance. Returns false when clamped.
func (w *FrameWriter) AppendSDF(in SDFInstance) bool {
	if w.sdfs >= w.layout.Caps.MaxSDFInstances {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.SDFOffset+w.sdfs*StrideSDF:]
	d[0] = in.X
	d[1] = in.Y
	d[2] = in.Radius
	d[3] = in.Rotation
	d[4] = in.R
	d[5] = in.G
	d[6] = in.B
	d[7] = in.Shininess
	d[8] = in.Emissive
	d[9] = in.ShapeType
	d[10] = in.HalfHeight
	d[11] = in.Extra
	w.sdfs++
	return true
}

// CopyEffectsVertices bulk-copies pre-built (x, y, color, u, v) vertex floats,
// clamping to whole vertices.
func (w *FrameWriter) CopyEffectsVertices(verts []float32) {
	n := len(verts) / StrideEffectsVertex
	room := w.layout.Caps.MaxEffectsVertices - w.effectsVerts
	if n > room {
		n = room
		w.truncated = true
	}
	if n <= 0 {
		return
	}
	copy(w.buf.data[w.layout.EffectsOffset+w.effectsVerts*StrideEffectsVertex:], verts[:n*StrideEffectsVertex])
	w.effectsVerts += n
}

// AppendVectorVertex writes one tessellated vertex. Returns false when
// clamped.
func (w *FrameWriter) AppendVectorVertex(v VectorVertex) bool {
	if w.vectorVerts >= w.layout.Caps.MaxVectorVertices {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.VectorOffset+w.vectorVerts*StrideVectorVertex:]
	d[0] = v.X
	d[1] = v.Y
	d[2] = v.R
	d[3] = v.G
	d[4] = v.B
	d[5] = v.A
	w.vectorVerts++
	return true
}

// AppendSound writes one sound id. Returns false when clamped.
func (w *FrameWriter) AppendSound(id uint8) bool {
	if w.sounds >= w.layout.Caps.MaxSounds {
		w.truncated = true
		return false
	}
	w.buf.data[w.layout.SoundOffset+w.sounds] = float32(id)
	w.sounds++
	return true
}

// AppendEvent writes one game event. Returns false when clamped.
func (w *FrameWriter) AppendEvent(e Event) bool {
	if w.events >= w.layout.Caps.MaxEvents {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.EventOffset+w.events*StrideEvent:]
	d[0] = float32(e.Kind)
	d[1] = e.A
	d[2] = e.B
	d[3] = e.C
	w.events++
	return true
}

// AppendLayerBatch writes one batch record. Returns false when clamped.
func (w *FrameWriter) AppendLayerBatch(b LayerBatch) bool {
	if w.batches >= w.layout.Caps.MaxLayerBatches {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.LayerBatchOffset+w.batches*StrideLayerBatch:]
	d[0] = float32(b.Layer)
	d[1] = float32(b.Start)
	d[2] = float32(b.End)
	d[3] = float32(b.Atlas)
	w.batches++
	return true
}

// AppendLight writes one point light. Returns false when clamped.
func (w *FrameWriter) AppendLight(l Light) bool {
	if w.lights >= w.layout.Caps.MaxLights {
		w.truncated = true
		return false
	}
	d := w.buf.data[w.layout.LightOffset+w.lights*StrideLight:]
	d[0] = l.X
	d[1] = l.Y
	d[2] = l.R
	d[3] = l.G
	d[4] = l.B
	d[5] = l.Intensity
	d[6] = l.Radius
	d[7] = float32(l.LayerMask)
	w.lights++
	return true
}

// SetWorldSize writes the visible world dimensions.
func (w *FrameWriter) SetWorldSize(width, height float32) {
	w.buf.data[SlotWorldWidth] = width
	w.buf.data[SlotWorldHeight] = height
}

// SetAmbient writes the ambient light color.
func (w *FrameWriter) SetAmbient(r, g, b float32) {
	w.buf.data[SlotAmbientR] = r
	w.buf.data[SlotAmbientG] = g
	w.buf.data[SlotAmbientB] = b
}

// SetAtlasSplit writes the legacy first-atlas-0 run length.
func (w *FrameWriter) SetAtlasSplit(n int) {
	w.buf.data[SlotAtlasSplit] = float32(n)
}

// SetBakeState writes the encoded bake mask/generation word.
func (w *FrameWriter) SetBakeState(encoded float32) {
	w.buf.data[SlotBakeState] = encoded
}

// Publish writes the per-frame counters into the header and releases the
// frame with the lock word.
func (w *FrameWriter) Publish(frame uint64) {
	h := w.buf.data
	h[SlotInstanceCount] = float32(w.instances)
	h[SlotEffectsVertexCount] = float32(w.effectsVerts)
	h[SlotSoundCount] = float32(w.sounds)
	h[SlotEventCount] = float32(w.events)
	h[SlotSDFCount] = float32(w.sdfs)
	h[SlotVectorVertexCount] = float32(w.vectorVerts)
	h[SlotLayerBatchCount] = float32(w.batches)
	h[SlotLightCount] = float32(w.lights)
	h[SlotReserved] = 0
	w.buf.Publish(frame)
}
