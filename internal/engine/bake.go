package engine

// BakeState tracks which layers are baked to an intermediate target and a
// generation counter the presenter uses to invalidate its caches. Every
// bake/invalidate/unbake bumps the generation.
type BakeState struct {
	Mask       uint8 // bits 0..5 = baked layers
	Generation uint32
}

// Encode packs the state into a single float for the header: mask in the low
// 6 bits, generation above. The generation occupies 26 bits and wraps; a wrap
// just looks like a full cache invalidation to the consumer.
func (b BakeState) Encode() float32 {
	gen := b.Generation & ((1 << 26) - 1)
	return float32(uint32(b.Mask&0x3F) | gen<<6)
}

// DecodeBakeState unpacks an encoded bake word.
func DecodeBakeState(f float32) BakeState {
	v := uint32(f)
	return BakeState{
		Mask:       uint8(v & 0x3F),
		Generation: v >> 6,
	}
}

// IsBaked reports whether the layer's bit is set.
func (b BakeState) IsBaked(layer RenderLayer) bool {
	return b.Mask&(1<<uint(layer)) != 0
}

func (b *BakeState) bake(layer RenderLayer) {
	b.Mask |= 1 << uint(layer)
	b.Generation++
}

func (b *BakeState) unbake(layer RenderLayer) {
	b.Mask &^= 1 << uint(layer)
	b.Generation++
}

func (b *BakeState) invalidate() {
	b.Generation++
}
