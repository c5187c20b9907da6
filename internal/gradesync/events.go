package gradesync

import (
	"github.com/pkg/errors"
)

type EventType string

const (
	// the host changed the input value (typing committed or programmatic)
	EventChange EventType = "change"
	// pointer pressed on an option in the list
	EventPointerDown EventType = "pointerdown"
	// click on the input itself
	EventClick EventType = "click"
	// mouse wheel over the input or the list
	EventWheel   EventType = "wheel"
	EventKeyDown EventType = "keydown"
	EventFocus   EventType = "focus"
	EventBlur    EventType = "blur"
)

const primaryButton = 0

// Event is a single user interaction reported by the host.
type Event struct {
	Type EventType `json:"type"`
	// change: the new input value
	Value string `json:"value,omitempty"`
	// pointerdown: name of the option under the pointer, "" when not on an option
	Option string `json:"option,omitempty"`
	// pointerdown: mouse button, 0 is primary
	Button int `json:"button,omitempty"`
	// wheel: negative scrolls up
	DeltaY float64 `json:"deltaY,omitempty"`
	// keydown: DOM key name, e.g. "ArrowUp"
	Key string `json:"key,omitempty"`
	Alt bool   `json:"alt,omitempty"`
}

// Outcome tells the host how to treat the native event.
type Outcome struct {
	PreventDefault bool `json:"preventDefault"`
}

var ErrUnknownEvent = errors.New("unknown event type")

//
// applies one interaction to the picker
//
func (s *Synchronizer) Handle(ev Event) (Outcome, error) {

	switch ev.Type {
	case EventChange:
		s.input.Set(ev.Value)

	case EventPointerDown:
		// stop the press bubbling to the field label
		if ev.Option == "" || ev.Button != primaryButton {
			return Outcome{PreventDefault: true}, nil
		}
		if s.Apply(ev.Option) {
			s.setOpen(false)
		}
		return Outcome{PreventDefault: true}, nil

	case EventClick:
		s.setOpen(!s.open)

	case EventWheel:
		s.focused = true
		if ev.DeltaY < 0 {
			s.StepUp()
		} else {
			s.StepDown()
		}
		return Outcome{PreventDefault: true}, nil

	case EventKeyDown:
		s.key(ev)

	case EventFocus:
		s.focused = true

	case EventBlur:
		s.focused = false
		s.setOpen(false)
		s.Commit()

	default:
		return Outcome{}, errors.Wrapf(ErrUnknownEvent, "%q", ev.Type)
	}

	return Outcome{}, nil
}

func (s *Synchronizer) key(ev Event) {
	switch ev.Key {
	case "ArrowUp":
		s.StepUp()
	case "ArrowDown":
		s.StepDown()
		if ev.Alt {
			s.setOpen(true)
		}
	case "Delete":
		s.Clear()
	case "Escape":
		s.setOpen(false)
	case "Enter":
		s.setOpen(false)
		s.Commit()
	case "Tab":
		s.Commit()
	}
}
