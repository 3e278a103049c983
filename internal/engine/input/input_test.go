package input

import "testing"

func TestIsKeyPressed(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventKeyDown, Key: KeyB})
	in.Push(Event{Type: EventKeyDown, Key: KeyF, Repeat: true})
	in.Push(Event{Type: EventKeyUp, Key: KeyR})

	if !in.IsKeyPressed(KeyB) {
		t.Error("B should be pressed")
	}
	if in.IsKeyPressed(KeyF) {
		t.Error("auto-repeat should not count as a press")
	}
	if in.IsKeyPressed(KeyR) {
		t.Error("key up should not count as a press")
	}

	in.Reset()
	if len(in.Events()) != 0 {
		t.Errorf("Reset left %d events", len(in.Events()))
	}
}

func TestQuitRequested(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventMouseMove})
	if in.QuitRequested() {
		t.Error("no quit event pushed")
	}
	in.Push(Event{Type: EventQuit})
	if !in.QuitRequested() {
		t.Error("quit event not seen")
	}
}

func TestKeyString(t *testing.T) {
	if KeyF12.String() != "F12" {
		t.Errorf("got %q", KeyF12.String())
	}
	if Key(99).String() != "unknown" {
		t.Errorf("out of range key: got %q", Key(99).String())
	}
}
