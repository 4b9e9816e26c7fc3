package sio

import (
	"reflect"

	"github.com/karagenc/sio-server/internal/sync"
)

type eventHandlerStore struct {
	mu     sync.Mutex
	events map[string][]*registeredHandler
}

// Handlers are kept in a single slice per event
// so that registration order holds across On and Once.
type registeredHandler struct {
	*eventHandler
	once bool
}

func newEventHandlerStore() *eventHandlerStore {
	return &eventHandlerStore{
		events: make(map[string][]*registeredHandler),
	}
}

func (e *eventHandlerStore) on(eventName string, handler *eventHandler) {
	e.add(eventName, &registeredHandler{eventHandler: handler})
}

func (e *eventHandlerStore) once(eventName string, handler *eventHandler) {
	e.add(eventName, &registeredHandler{eventHandler: handler, once: true})
}

func (e *eventHandlerStore) add(eventName string, handler *registeredHandler) {
	e.mu.Lock()
	e.events[eventName] = append(e.events[eventName], handler)
	e.mu.Unlock()
}

// Remove the given handler functions of an event.
// If no handler is given, every handler of the event is removed.
func (e *eventHandlerStore) off(eventName string, handler ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(handler) == 0 {
		delete(e.events, eventName)
		return
	}

	pointers := make([]uintptr, 0, len(handler))
	for _, h := range handler {
		rv := reflect.ValueOf(h)
		if rv.Kind() == reflect.Func {
			pointers = append(pointers, rv.Pointer())
		}
	}

	handlers := e.events[eventName]
	kept := make([]*registeredHandler, 0, len(handlers))
	for _, h := range handlers {
		remove := false
		for _, p := range pointers {
			if h.rv.Pointer() == p {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(e.events, eventName)
	} else {
		e.events[eventName] = kept
	}
}

func (e *eventHandlerStore) offAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = make(map[string][]*registeredHandler)
}

// Returns the handlers of an event in registration order.
// Once handlers are removed from the store.
func (e *eventHandlerStore) getAll(eventName string) (handlers []*eventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	registered := e.events[eventName]
	if len(registered) == 0 {
		return nil
	}

	handlers = make([]*eventHandler, 0, len(registered))
	kept := registered[:0]
	for _, h := range registered {
		handlers = append(handlers, h.eventHandler)
		if !h.once {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(registered); i++ {
		registered[i] = nil
	}
	if len(kept) == 0 {
		delete(e.events, eventName)
	} else {
		e.events[eventName] = kept
	}
	return
}
