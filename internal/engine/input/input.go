// Package input holds the platform independent event stream of one frame.
//
// The window package translates SDL events into these types so the viewer
// can be driven and tested without a display.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventDropFile
	EventFocusLost
)

// Key is a keyboard key the viewer binds.
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyLShift
	KeyTab
	KeyEscape
	KeyB
	KeyF
	KeyH
	KeyR
	KeyF12
)

var keyNames = [...]string{
	KeyUnknown: "unknown",
	KeyW:       "W",
	KeyA:       "A",
	KeyS:       "S",
	KeyD:       "D",
	KeyQ:       "Q",
	KeyE:       "E",
	KeyUp:      "Up",
	KeyDown:    "Down",
	KeyLeft:    "Left",
	KeyRight:   "Right",
	KeySpace:   "Space",
	KeyLShift:  "LShift",
	KeyTab:     "Tab",
	KeyEscape:  "Escape",
	KeyB:       "B",
	KeyF:       "F",
	KeyH:       "H",
	KeyR:       "R",
	KeyF12:     "F12",
}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// Mouse buttons, numbered like SDL.
const (
	ButtonLeft   uint8 = 1
	ButtonMiddle uint8 = 2
	ButtonRight  uint8 = 3
)

// Event is one translated window event.
type Event struct {
	Type   EventType
	Key    Key
	Repeat bool

	// EventWindowResize: drawable size in pixels.
	Width  int
	Height int

	// Mouse position in window pixels, and relative motion for EventMouseMove.
	MouseX int
	MouseY int
	DeltaX float32
	DeltaY float32
	Button uint8

	// EventMouseWheel: vertical notches, positive away from the user.
	Wheel float32
	// Precise is set when Wheel carries pixels rather than notches.
	Precise bool

	// EventDropFile
	Path string
}

// Input collects the events of one frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Reset drops the events of the previous frame.
func (i *Input) Reset() {
	i.events = i.events[:0]
}

// Push appends an event to the current frame.
func (i *Input) Push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events pushed since the last Reset.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether the frame contains a quit event.
func (i *Input) QuitRequested() bool {
	for _, e := range i.events {
		if e.Type == EventQuit {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a key went down this frame. Auto-repeat is ignored.
func (i *Input) IsKeyPressed(key Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key && !e.Repeat {
			return true
		}
	}
	return false
}
