package sio

import "fmt"

// A middleware runs before a socket joins the namespace.
// Returning an error rejects the connection; the middlewares
// registered after it don't run. Return a *ConnectError to send
// structured data to the client.
type NspMiddlewareFunc func(socket ServerSocket, handshake *Handshake) error

// Middlewares run in registration order, for the connections
// that arrive after they are registered.
func (n *Namespace) Use(f NspMiddlewareFunc) {
	n.middlewareFuncsMu.Lock()
	defer n.middlewareFuncsMu.Unlock()
	n.middlewareFuncs = append(n.middlewareFuncs, f)
}

func (n *Namespace) runMiddlewares(socket *serverSocket, handshake *Handshake) error {
	n.middlewareFuncsMu.RLock()
	funcs := make([]NspMiddlewareFunc, len(n.middlewareFuncs))
	copy(funcs, n.middlewareFuncs)
	n.middlewareFuncsMu.RUnlock()

	for _, f := range funcs {
		err := callMiddlewareFunc(f, socket, handshake)
		if err != nil {
			return err
		}
	}
	return nil
}

func callMiddlewareFunc(f NspMiddlewareFunc, socket *serverSocket, handshake *Handshake) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r, "sio: middleware panicked")
		}
	}()
	err = f(socket, handshake)
	if err == nil && socket.conn.isClosed() {
		return fmt.Errorf("sio: connection closed")
	}
	return
}
