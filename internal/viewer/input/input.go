// Package input polls SDL2 events into per-frame viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies viewer events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventDrag
	EventWheel
)

// Event represents a processed input event. Drag events carry the
// relative motion since the last frame plus the held button; wheel
// events carry the scroll amount in DY.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	DX     int
	DY     int
	Button uint8
	Shift  bool
}

// Input turns the SDL event queue into viewer events, tracking held
// mouse buttons and shift state across frames.
type Input struct {
	events    []Event
	leftHeld  bool
	rightHeld bool
	shiftHeld bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the window was closed.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Keysym.Scancode == sdl.SCANCODE_LSHIFT || e.Keysym.Scancode == sdl.SCANCODE_RSHIFT {
				i.shiftHeld = e.Type == sdl.KEYDOWN
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseButtonEvent:
			held := e.Type == sdl.MOUSEBUTTONDOWN
			switch e.Button {
			case sdl.BUTTON_LEFT:
				i.leftHeld = held
			case sdl.BUTTON_RIGHT:
				i.rightHeld = held
			}

		case *sdl.MouseMotionEvent:
			button := uint8(0)
			switch {
			case i.leftHeld:
				button = sdl.BUTTON_LEFT
			case i.rightHeld:
				button = sdl.BUTTON_RIGHT
			default:
				continue
			}
			i.events = append(i.events, Event{
				Type:   EventDrag,
				DX:     int(e.XRel),
				DY:     int(e.YRel),
				Button: button,
				Shift:  i.shiftHeld,
			})

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type: EventWheel,
				DY:   int(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
