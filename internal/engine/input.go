package engine

// InputKind classifies a host input event.
type InputKind uint8

const (
	InputPointerDown InputKind = 0
	InputPointerUp   InputKind = 1
	InputPointerMove InputKind = 2
	InputKeyDown     InputKind = 3
	InputKeyUp       InputKind = 4
	InputCustom      InputKind = 5
)

// CustomResizeKind is the distinguished custom event the host sends when the
// viewport changes. It is processed before any game call in the tick it
// arrives; A carries the projected width, B the height.
const CustomResizeKind uint32 = 99

// InputEvent is one host event. Pointer coordinates are already in world
// units (the host converts from CSS pixels before sending).
type InputEvent struct {
	Kind InputKind
	X, Y float32
	Code uint32 // key events
	// custom events
	CustomKind uint32
	A, B, C    float32
}

// InputQueue holds the events drained for the current frame. It is valid for
// the duration of one Game.Update call only.
type InputQueue struct {
	events []InputEvent
}

// Events returns every event this frame, in arrival order.
func (q *InputQueue) Events() []InputEvent {
	return q.events
}

// Len returns the number of events this frame.
func (q *InputQueue) Len() int {
	return len(q.events)
}

// PointerDowns returns this frame's pointer-down events.
func (q *InputQueue) PointerDowns() []InputEvent {
	return q.filter(InputPointerDown)
}

// PointerUps returns this frame's pointer-up events.
func (q *InputQueue) PointerUps() []InputEvent {
	return q.filter(InputPointerUp)
}

// PointerMoves returns this frame's pointer-move events.
func (q *InputQueue) PointerMoves() []InputEvent {
	return q.filter(InputPointerMove)
}

// KeyDown reports whether a key-down for code arrived this frame.
func (q *InputQueue) KeyDown(code uint32) bool {
	for i := range q.events {
		if q.events[i].Kind == InputKeyDown && q.events[i].Code == code {
			return true
		}
	}
	return false
}

// KeyUp reports whether a key-up for code arrived this frame.
func (q *InputQueue) KeyUp(code uint32) bool {
	for i := range q.events {
		if q.events[i].Kind == InputKeyUp && q.events[i].Code == code {
			return true
		}
	}
	return false
}

// Customs returns this frame's custom events (resize already filtered out).
func (q *InputQueue) Customs() []InputEvent {
	var out []InputEvent
	for i := range q.events {
		e := q.events[i]
		if e.Kind == InputCustom && e.CustomKind != CustomResizeKind {
			out = append(out, e)
		}
	}
	return out
}

func (q *InputQueue) filter(kind InputKind) []InputEvent {
	var out []InputEvent
	for i := range q.events {
		if q.events[i].Kind == kind {
			out = append(out, q.events[i])
		}
	}
	return out
}

func (q *InputQueue) reset() {
	q.events = q.events[:0]
}

func (q *InputQueue) push(e InputEvent) {
	q.events = append(q.events, e)
}
