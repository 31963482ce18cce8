package interaction

import (
	"fmt"
	"strings"

	"github.com/cristianadrielbraun/badgeoverlay/internal/geometry"
)

// PointerKind enumerates the pointer events the controller consumes.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
	PointerLeave
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	case PointerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// ParsePointerKind maps "down", "pointerdown" and friends to a PointerKind.
func ParsePointerKind(s string) (PointerKind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "pointer") {
	case "down":
		return PointerDown, nil
	case "move":
		return PointerMove, nil
	case "up":
		return PointerUp, nil
	case "cancel":
		return PointerCancel, nil
	case "leave":
		return PointerLeave, nil
	}
	return 0, fmt.Errorf("unknown pointer event %q", s)
}

// PointerEvent is a pointer event in client coordinates together with the
// canvas element's bounding box at the time of the event.
type PointerEvent struct {
	Kind      PointerKind
	PointerID int
	ClientX   float64
	ClientY   float64
	Box       geometry.Box
}

// KeyEvent is a key-down event. Key uses DOM key names ("ArrowLeft").
type KeyEvent struct {
	Key   string
	Shift bool
}

// direction returns the unit translation for an arrow key.
func (e KeyEvent) direction() (dx, dy float64, ok bool) {
	switch e.Key {
	case "ArrowLeft":
		return -1, 0, true
	case "ArrowRight":
		return 1, 0, true
	case "ArrowUp":
		return 0, -1, true
	case "ArrowDown":
		return 0, 1, true
	}
	return 0, 0, false
}
