package host

import (
	"fmt"

	"zap-engine/internal/engine"
)

// Message kinds the host sends over the websocket (and the control API's
// input endpoint accepts). Pointer coordinates are world units; the host
// page converts from CSS pixels using the last resize's projection.
const (
	MsgPointerDown = "pointer_down"
	MsgPointerUp   = "pointer_up"
	MsgPointerMove = "pointer_move"
	MsgKeyDown     = "key_down"
	MsgKeyUp       = "key_up"
	MsgCustom      = "custom"
	MsgResize      = "resize"
	MsgStop        = "stop"
	MsgResume      = "resume"
)

// HostMessage is the JSON envelope for host → engine messages.
type HostMessage struct {
	Type   string  `json:"type"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	Code   uint32  `json:"code,omitempty"`
	Kind   uint32  `json:"kind,omitempty"`
	A      float32 `json:"a,omitempty"`
	B      float32 `json:"b,omitempty"`
	C      float32 `json:"c,omitempty"`
	Width  float32 `json:"width,omitempty"`
	Height float32 `json:"height,omitempty"`
}

// ToInputEvent maps a message onto an engine input event. Control messages
// (stop, resume) return ok=false and are handled by the caller.
func (m HostMessage) ToInputEvent() (engine.InputEvent, bool, error) {
	switch m.Type {
	case MsgPointerDown:
		return engine.InputEvent{Kind: engine.InputPointerDown, X: m.X, Y: m.Y}, true, nil
	case MsgPointerUp:
		return engine.InputEvent{Kind: engine.InputPointerUp, X: m.X, Y: m.Y}, true, nil
	case MsgPointerMove:
		return engine.InputEvent{Kind: engine.InputPointerMove, X: m.X, Y: m.Y}, true, nil
	case MsgKeyDown:
		return engine.InputEvent{Kind: engine.InputKeyDown, Code: m.Code}, true, nil
	case MsgKeyUp:
		return engine.InputEvent{Kind: engine.InputKeyUp, Code: m.Code}, true, nil
	case MsgCustom:
		return engine.InputEvent{
			Kind:       engine.InputCustom,
			CustomKind: m.Kind,
			A:          m.A, B: m.B, C: m.C,
		}, true, nil
	case MsgResize:
		// Resize travels as the distinguished custom event so the runner
		// applies it before any game call.
		return engine.InputEvent{
			Kind:       engine.InputCustom,
			CustomKind: engine.CustomResizeKind,
			A:          m.Width, B: m.Height,
		}, true, nil
	case MsgStop, MsgResume:
		return engine.InputEvent{}, false, nil
	}
	return engine.InputEvent{}, false, fmt.Errorf("host: unknown message type %q", m.Type)
}
