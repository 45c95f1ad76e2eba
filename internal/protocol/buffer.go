package protocol

import "sync/atomic"

// Buffer is the contiguous float region the producer writes each tick and a
// consumer on another thread snapshots. Cell 0 is the lock word: the producer
// writes all sections, then the header counters, then publishes by storing 1.
// There is no handshake to clear it; consumer reads are idempotent and the
// producer overwrites in place next tick.
//
// The float cell mirrors an atomic word so in-process consumers get a proper
// happens-before edge; remote consumers (message-passing fallback) receive a
// copied prefix and only ever see published frames.
type Buffer struct {
	data []float32
	lock atomic.Uint32
}

// NewBuffer allocates a zeroed buffer sized for the layout and stamps the
// static header cells (capacities, version) that never change per frame.
func NewBuffer(l Layout) *Buffer {
	b := &Buffer{data: make([]float32, l.TotalFloats)}
	h := b.data
	h[SlotMaxInstances] = float32(l.Caps.MaxInstances)
	h[SlotMaxEffectsVertices] = float32(l.Caps.MaxEffectsVertices)
	h[SlotMaxSounds] = float32(l.Caps.MaxSounds)
	h[SlotMaxEvents] = float32(l.Caps.MaxEvents)
	h[SlotMaxSDFInstances] = float32(l.Caps.MaxSDFInstances)
	h[SlotMaxVectorVertices] = float32(l.Caps.MaxVectorVertices)
	h[SlotMaxLayerBatches] = float32(l.Caps.MaxLayerBatches)
	h[SlotMaxLights] = float32(l.Caps.MaxLights)
	h[SlotProtocolVersion] = Version
	// Slot 20 counts floats from the start of the data sections, not from
	// cell 0.
	h[SlotLayerBatchOffset] = float32(l.LayerBatchOffset - HeaderFloats)
	return b
}

// Data exposes the raw float region. The producer writes through it before
// Publish; consumers should go through a FrameReader.
func (b *Buffer) Data() []float32 {
	return b.data
}

// Publish stores the frame counter and sets the lock word, making the frame
// visible to consumers.
func (b *Buffer) Publish(frame uint64) {
	b.data[SlotFrameCounter] = float32(frame)
	b.data[SlotLock] = 1
	b.lock.Store(1)
}

// Published reports whether at least one frame has been released.
func (b *Buffer) Published() bool {
	return b.lock.Load() == 1
}

// FrameCounter returns the last published frame number.
func (b *Buffer) FrameCounter() uint64 {
	return uint64(b.data[SlotFrameCounter])
}

// UsedPrefix returns the buffer up to the end of the last section, the
// slice the message-passing fallback copies per tick. With fixed capacities
// the whole region is in use, so this is the full buffer.
func (b *Buffer) UsedPrefix() []float32 {
	return b.data
}
