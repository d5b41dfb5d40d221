package events

// Event represents a structured state change emitted by the pool.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. the HTTP gateway
// event feed and the audit journal).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Func adapts a plain function to the Emitter interface.
type Func func(Event)

// Emit implements the Emitter interface.
func (f Func) Emit(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Multi fans one event out to several emitters in order.
func Multi(emitters ...Emitter) Emitter {
	return Func(func(evt Event) {
		for _, emitter := range emitters {
			if emitter != nil {
				emitter.Emit(evt)
			}
		}
	})
}
