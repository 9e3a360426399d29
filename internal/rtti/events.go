package rtti

// EventType is the type of a registry lifecycle event.
type EventType int

const (
	// EventModuleLoaded is emitted when a module is created.
	EventModuleLoaded EventType = iota
	// EventModuleUnloaded is emitted before a module is removed.
	EventModuleUnloaded
	// EventClassLoaded is emitted when a class is registered.
	EventClassLoaded
	// EventClassUnloaded is emitted when a class is unregistered.
	EventClassUnloaded
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventModuleLoaded:
		return "module-loaded"
	case EventModuleUnloaded:
		return "module-unloaded"
	case EventClassLoaded:
		return "class-loaded"
	case EventClassUnloaded:
		return "class-unloaded"
	default:
		return "unknown"
	}
}

// Event is a registry lifecycle event. Class is nil for module events.
type Event struct {
	Type   EventType
	Module *Module
	Class  *Class
}

// EventHandler receives registry events synchronously.
// Panics in handlers are recovered and logged.
type EventHandler func(event Event)

// Subscribe registers a handler for lifecycle events.
// Returns a function that removes the handler.
func (r *Registry) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	r.handlers = append(r.handlers, handler)
	index := len(r.handlers) - 1

	return func() {
		// Set to nil instead of removing to keep other indices valid
		if index < len(r.handlers) {
			r.handlers[index] = nil
		}
	}
}

func (r *Registry) emit(event Event) {
	handlers := make([]EventHandler, len(r.handlers))
	copy(handlers, r.handlers)

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			defer func() {
				if p := recover(); p != nil {
					r.log.Error("event handler panicked on %s: %v", event.Type, p)
				}
			}()
			handler(event)
		}()
	}
}
