package sio

import (
	"reflect"

	"github.com/karagenc/sio-server/internal/sync"
)

// handlerStore keeps typed handler funcs in registration order.
// Once handlers are removed the first time they are returned.
//
// Funcs are told apart by their code pointer, so removing a closure
// removes every closure created from the same function literal.
type handlerStore[T any] struct {
	mu       sync.Mutex
	handlers []storedHandler[T]
}

type storedHandler[T any] struct {
	f    T
	once bool
}

func newHandlerStore[T any]() *handlerStore[T] {
	return new(handlerStore[T])
}

func (e *handlerStore[T]) on(handler T) {
	e.mu.Lock()
	e.handlers = append(e.handlers, storedHandler[T]{f: handler})
	e.mu.Unlock()
}

func (e *handlerStore[T]) once(handler T) {
	e.mu.Lock()
	e.handlers = append(e.handlers, storedHandler[T]{f: handler, once: true})
	e.mu.Unlock()
}

func funcPointer(f any) uintptr {
	rv := reflect.ValueOf(f)
	if rv.Kind() != reflect.Func {
		return 0
	}
	return rv.Pointer()
}

func (e *handlerStore[T]) off(handler ...T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := make([]storedHandler[T], 0, len(e.handlers))
	for _, h := range e.handlers {
		p := funcPointer(h.f)
		remove := false
		for _, r := range handler {
			if funcPointer(r) == p {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, h)
		}
	}
	e.handlers = kept
}

func (e *handlerStore[T]) offAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = nil
}

func (e *handlerStore[T]) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

func (e *handlerStore[T]) getAll() (handlers []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	handlers = make([]T, 0, len(e.handlers))
	kept := make([]storedHandler[T], 0, len(e.handlers))
	for _, h := range e.handlers {
		handlers = append(handlers, h.f)
		if !h.once {
			kept = append(kept, h)
		}
	}
	e.handlers = kept
	return
}
