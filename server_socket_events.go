package sio

import "fmt"

// Register an event handler. handler must be a function.
// The values of the event are converted into its parameter types.
// Declare an AckFunc as the last parameter to acknowledge the event.
//
// Handlers run in registration order on the goroutine of the connection.
func (s *serverSocket) OnEvent(eventName string, handler any) {
	s.addEventHandler(eventName, handler, false)
}

// Register a one-time event handler.
// The handler will run once and will be removed afterwards.
func (s *serverSocket) OnceEvent(eventName string, handler any) {
	s.addEventHandler(eventName, handler, true)
}

func (s *serverSocket) addEventHandler(eventName string, handler any, once bool) {
	if IsEventReserved(eventName) {
		panic(fmt.Errorf("sio: attempted to register a reserved event: `%s`", eventName))
	}
	h, err := newEventHandler(handler)
	if err != nil {
		panic(err)
	}
	if once {
		s.eventHandlers.once(eventName, h)
	} else {
		s.eventHandlers.on(eventName, h)
	}
}

// Remove event handlers.
//
// If you want to remove all handlers of a particular event,
// provide the eventName and leave the handler empty.
func (s *serverSocket) OffEvent(eventName string, handler ...any) {
	s.eventHandlers.off(eventName, handler...)
}

// Remove all handlers, including the error, disconnecting and disconnect handlers.
func (s *serverSocket) OffAll() {
	s.eventHandlers.offAll()
	s.errorHandlers.offAll()
	s.disconnectingHandlers.offAll()
	s.disconnectHandlers.offAll()
}

type (
	ServerSocketDisconnectingFunc func(reason Reason)
	ServerSocketDisconnectFunc    func(reason Reason)
	ServerSocketErrorFunc         func(err error)
)

func (s *serverSocket) OnError(f ServerSocketErrorFunc) {
	s.errorHandlers.on(f)
}

func (s *serverSocket) OnceError(f ServerSocketErrorFunc) {
	s.errorHandlers.once(f)
}

func (s *serverSocket) OffError(f ...ServerSocketErrorFunc) {
	s.errorHandlers.off(f...)
}

func (s *serverSocket) OnDisconnecting(f ServerSocketDisconnectingFunc) {
	s.disconnectingHandlers.on(f)
}

func (s *serverSocket) OnceDisconnecting(f ServerSocketDisconnectingFunc) {
	s.disconnectingHandlers.once(f)
}

func (s *serverSocket) OffDisconnecting(f ...ServerSocketDisconnectingFunc) {
	s.disconnectingHandlers.off(f...)
}

func (s *serverSocket) OnDisconnect(f ServerSocketDisconnectFunc) {
	s.disconnectHandlers.on(f)
}

func (s *serverSocket) OnceDisconnect(f ServerSocketDisconnectFunc) {
	s.disconnectHandlers.once(f)
}

func (s *serverSocket) OffDisconnect(f ...ServerSocketDisconnectFunc) {
	s.disconnectHandlers.off(f...)
}
