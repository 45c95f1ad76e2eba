// Package protocol defines the shared-buffer wire format: the 28-float
// header, fixed per-section strides, and the offset arithmetic both producer
// and consumer derive from capacities. The layout is self-describing: the
// consumer reconstructs it from capacities it reads out of the header.
package protocol

import (
	"errors"
	"fmt"
)

// Version is written into header slot 13. Strides never change without a
// bump here.
const Version float32 = 4.0

// Fixed wire-format strides, in floats.
const (
	StrideInstance      = 8
	StrideEffectsVertex = 5
	StrideSound         = 1
	StrideEvent         = 4
	StrideSDF           = 12
	StrideVectorVertex  = 6
	StrideLayerBatch    = 4
	StrideLight         = 8

	HeaderFloats = 28
)

// Header slot indices.
const (
	SlotLock               = 0
	SlotFrameCounter       = 1
	SlotMaxInstances       = 2
	SlotInstanceCount      = 3
	SlotAtlasSplit         = 4
	SlotMaxEffectsVertices = 5
	SlotEffectsVertexCount = 6
	SlotWorldWidth         = 7
	SlotWorldHeight        = 8
	SlotMaxSounds          = 9
	SlotSoundCount         = 10
	SlotMaxEvents          = 11
	SlotEventCount         = 12
	SlotProtocolVersion    = 13
	SlotMaxSDFInstances    = 14
	SlotSDFCount           = 15
	SlotMaxVectorVertices  = 16
	SlotVectorVertexCount  = 17
	SlotMaxLayerBatches    = 18
	SlotLayerBatchCount    = 19
	SlotLayerBatchOffset   = 20
	SlotBakeState          = 21
	SlotMaxLights          = 22
	SlotLightCount         = 23
	SlotAmbientR           = 24
	SlotAmbientG           = 25
	SlotAmbientB           = 26
	SlotReserved           = 27
)

// ErrBadHeader is returned when a consumer-side buffer is too short or its
// version does not match.
var ErrBadHeader = errors.New("protocol: bad header")

// Capacities are the per-section maxima that drive the offset arithmetic.
type Capacities struct {
	MaxInstances       int
	MaxEffectsVertices int
	MaxSounds          int
	MaxEvents          int
	MaxSDFInstances    int
	MaxVectorVertices  int
	MaxLayerBatches    int
	MaxLights          int
}

// DefaultCapacities are safe mid-size pools for games that don't configure
// their own.
func DefaultCapacities() Capacities {
	return Capacities{
		MaxInstances:       1024,
		MaxEffectsVertices: 4096,
		MaxSounds:          32,
		MaxEvents:          64,
		MaxSDFInstances:    128,
		MaxVectorVertices:  2048,
		MaxLayerBatches:    64,
		MaxLights:          16,
	}
}

// Layout is the resolved offset table. Offsets are float indices into the
// buffer; each section's length is capacity x stride.
type Layout struct {
	Caps Capacities

	InstanceOffset     int
	EffectsOffset      int
	SoundOffset        int
	EventOffset        int
	SDFOffset          int
	VectorOffset       int
	LayerBatchOffset   int
	LightOffset        int
	TotalFloats        int
}

// NewLayout computes section offsets from capacities. Section order is fixed:
// instances, effects vertices, sounds, events, sdf instances, vector
// vertices, layer batches, lights.
func NewLayout(c Capacities) Layout {
	l := Layout{Caps: c}
	off := HeaderFloats
	l.InstanceOffset = off
	off += c.MaxInstances * StrideInstance
	l.EffectsOffset = off
	off += c.MaxEffectsVertices * StrideEffectsVertex
	l.SoundOffset = off
	off += c.MaxSounds * StrideSound
	l.EventOffset = off
	off += c.MaxEvents * StrideEvent
	l.SDFOffset = off
	off += c.MaxSDFInstances * StrideSDF
	l.VectorOffset = off
	off += c.MaxVectorVertices * StrideVectorVertex
	l.LayerBatchOffset = off
	off += c.MaxLayerBatches * StrideLayerBatch
	l.LightOffset = off
	off += c.MaxLights * StrideLight
	l.TotalFloats = off
	return l
}

// LayoutFromHeader reconstructs the layout on the consumer side from the
// capacities the producer wrote into the header.
func LayoutFromHeader(buf []float32) (Layout, error) {
	if len(buf) < HeaderFloats {
		return Layout{}, fmt.Errorf("%w: %d floats", ErrBadHeader, len(buf))
	}
	if buf[SlotProtocolVersion] != Version {
		return Layout{}, fmt.Errorf("%w: version %.1f, want %.1f", ErrBadHeader, buf[SlotProtocolVersion], Version)
	}
	caps := Capacities{
		MaxInstances:       int(buf[SlotMaxInstances]),
		MaxEffectsVertices: int(buf[SlotMaxEffectsVertices]),
		MaxSounds:          int(buf[SlotMaxSounds]),
		MaxEvents:          int(buf[SlotMaxEvents]),
		MaxSDFInstances:    int(buf[SlotMaxSDFInstances]),
		MaxVectorVertices:  int(buf[SlotMaxVectorVertices]),
		MaxLayerBatches:    int(buf[SlotMaxLayerBatches]),
		MaxLights:          int(buf[SlotMaxLights]),
	}
	return NewLayout(caps), nil
}
