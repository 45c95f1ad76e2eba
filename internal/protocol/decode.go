package protocol

// FrameReader decodes a published frame. It is the consumer half of the
// contract: capacities and offsets are read once from the header (the layout
// may be cached across frames), per-frame counters are re-read every frame.
type FrameReader struct {
	layout Layout
	data   []float32
}

// NewFrameReader wraps a buffer snapshot with a known layout.
func NewFrameReader(l Layout, data []float32) *FrameReader {
	return &FrameReader{layout: l, data: data}
}

// ReadFrame reconstructs the layout from the header and wraps the snapshot.
// This is the self-describing entry point remote consumers use.
func ReadFrame(data []float32) (*FrameReader, error) {
	l, err := LayoutFromHeader(data)
	if err != nil {
		return nil, err
	}
	return &FrameReader{layout: l, data: data}, nil
}

// Layout returns the resolved offset table.
func (r *FrameReader) Layout() Layout { return r.layout }

// Locked reports whether the producer has published a frame.
func (r *FrameReader) Locked() bool { return r.data[SlotLock] != 0 }

// FrameCounter returns the published frame number.
func (r *FrameReader) FrameCounter() uint64 { return uint64(r.data[SlotFrameCounter]) }

// WorldSize returns the visible world dimensions.
func (r *FrameReader) WorldSize() (float32, float32) {
	return r.data[SlotWorldWidth], r.data[SlotWorldHeight]
}

// Ambient returns the ambient light color.
func (r *FrameReader) Ambient() (float32, float32, float32) {
	return r.data[SlotAmbientR], r.data[SlotAmbientG], r.data[SlotAmbientB]
}

// AtlasSplit returns the legacy first-atlas-0 run length.
func (r *FrameReader) AtlasSplit() int { return int(r.data[SlotAtlasSplit]) }

// BakeState returns the raw encoded bake word.
func (r *FrameReader) BakeState() float32 { return r.data[SlotBakeState] }

// InstanceCount returns this frame's instance count.
func (r *FrameReader) InstanceCount() int { return r.clamp(SlotInstanceCount, r.layout.Caps.MaxInstances) }

// EffectsVertexCount returns this frame's effects vertex count.
func (r *FrameReader) EffectsVertexCount() int {
	return r.clamp(SlotEffectsVertexCount, r.layout.Caps.MaxEffectsVertices)
}

// SoundCount returns this frame's queued sound count.
func (r *FrameReader) SoundCount() int { return r.clamp(SlotSoundCount, r.layout.Caps.MaxSounds) }

// EventCount returns this frame's game event count.
func (r *FrameReader) EventCount() int { return r.clamp(SlotEventCount, r.layout.Caps.MaxEvents) }

// SDFCount returns this frame's SDF instance count.
func (r *FrameReader) SDFCount() int { return r.clamp(SlotSDFCount, r.layout.Caps.MaxSDFInstances) }

// VectorVertexCount returns this frame's vector vertex count.
func (r *FrameReader) VectorVertexCount() int {
	return r.clamp(SlotVectorVertexCount, r.layout.Caps.MaxVectorVertices)
}

// LayerBatchCount returns this frame's layer batch count.
func (r *FrameReader) LayerBatchCount() int {
	return r.clamp(SlotLayerBatchCount, r.layout.Caps.MaxLayerBatches)
}

// LightCount returns this frame's light count.
func (r *FrameReader) LightCount() int { return r.clamp(SlotLightCount, r.layout.Caps.MaxLights) }

func (r *FrameReader) clamp(slot, max int) int {
	n := int(r.data[slot])
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// InstanceAt decodes instance i.
func (r *FrameReader) InstanceAt(i int) Instance {
	d := r.data[r.layout.InstanceOffset+i*StrideInstance:]
	return Instance{
		X: d[0], Y: d[1], Rotation: d[2], Scale: d[3],
		SpriteCol: d[4], Alpha: d[5], CellSpan: d[6], AtlasRow: d[7],
	}
}

// SDFAt decodes SDF instance i.
func (r *FrameReader) SDFAt(i int) SDFInstance {
	d := r.data[r.layout.SDFOffset+i*StrideSDF:]
	return SDFInstance{
		X: d[0], Y: d[1], Radius: d[2], Rotation: d[3],
		R: d[4], G: d[5], B: d[6],
		Shininess: d[7], Emissive: d[8], ShapeType: d[9],
		HalfHeight: d[10], Extra: d[11],
	}
}

// VectorVertexAt decodes vector vertex i.
func (r *FrameReader) VectorVertexAt(i int) VectorVertex {
	d := r.data[r.layout.VectorOffset+i*StrideVectorVertex:]
	return VectorVertex{X: d[0], Y: d[1], R: d[2], G: d[3], B: d[4], A: d[5]}
}

// EffectsVertexAt returns the raw 5 floats of effects vertex i.
func (r *FrameReader) EffectsVertexAt(i int) [StrideEffectsVertex]float32 {
	d := r.data[r.layout.EffectsOffset+i*StrideEffectsVertex:]
	return [StrideEffectsVertex]float32{d[0], d[1], d[2], d[3], d[4]}
}

// SoundAt decodes sound id i.
func (r *FrameReader) SoundAt(i int) uint8 {
	return uint8(r.data[r.layout.SoundOffset+i])
}

// EventAt decodes game event i.
func (r *FrameReader) EventAt(i int) Event {
	d := r.data[r.layout.EventOffset+i*StrideEvent:]
	return Event{Kind: uint32(d[0]), A: d[1], B: d[2], C: d[3]}
}

// LayerBatchAt decodes layer batch i.
func (r *FrameReader) LayerBatchAt(i int) LayerBatch {
	d := r.data[r.layout.LayerBatchOffset+i*StrideLayerBatch:]
	return LayerBatch{Layer: int(d[0]), Start: int(d[1]), End: int(d[2]), Atlas: int(d[3])}
}

// LightAt decodes light i.
func (r *FrameReader) LightAt(i int) Light {
	d := r.data[r.layout.LightOffset+i*StrideLight:]
	return Light{
		X: d[0], Y: d[1], R: d[2], G: d[3], B: d[4],
		Intensity: d[5], Radius: d[6], LayerMask: uint32(d[7]),
	}
}
