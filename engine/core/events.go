package core

// EventCode identifies a kind of engine event. Application codes start at EventCodeUser.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EventCodeApplicationQuit EventCode = 0x01
	// Keyboard key pressed. Data.Key holds the key.
	EventCodeKeyPressed EventCode = 0x02
	// Keyboard key released. Data.Key holds the key.
	EventCodeKeyReleased EventCode = 0x03
	// Framebuffer resized. Data.Width / Data.Height hold the new size.
	EventCodeResized EventCode = 0x04
	// The scene configuration was reloaded from disk. Data.Path holds the file.
	EventCodeSceneReloaded EventCode = 0x05

	EventCodeUser EventCode = 0xFF
)

// EventContext carries the payload of a fired event.
type EventContext struct {
	Code   EventCode
	Sender interface{}

	Key    int
	Width  uint32
	Height uint32
	Path   string
}

// FnOnEvent should return true if the event was handled; handled events are not passed on.
type FnOnEvent func(ctx EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the calling goroutine.
// It is owned by the engine and only used from the render thread.
type EventBus struct {
	registered map[EventCode][]registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[EventCode][]registeredEvent)}
}

// Register listens for events with the given code. A listener may only be
// registered once per code; duplicates return false.
func (b *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	for _, e := range b.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	b.registered[code] = append(b.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

// Unregister removes the listener for the given code. Returns false if it was not registered.
func (b *EventBus) Unregister(code EventCode, listener interface{}) bool {
	events := b.registered[code]
	for i, e := range events {
		if e.listener == listener {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire sends ctx to the listeners of ctx.Code in registration order and
// reports whether one of them handled it.
func (b *EventBus) Fire(ctx EventContext) bool {
	for _, e := range b.registered[ctx.Code] {
		if e.callback(ctx) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (b *EventBus) Shutdown() {
	b.registered = make(map[EventCode][]registeredEvent)
}
