package sio

type NamespaceConnectionFunc func(socket ServerSocket)

func (n *Namespace) OnConnection(f NamespaceConnectionFunc) {
	n.connectionHandlers.on(f)
}

// Alias of OnConnection
func (n *Namespace) OnConnect(f NamespaceConnectionFunc) {
	n.connectionHandlers.on(f)
}

func (n *Namespace) OnceConnection(f NamespaceConnectionFunc) {
	n.connectionHandlers.once(f)
}

func (n *Namespace) OffConnection(f ...NamespaceConnectionFunc) {
	n.connectionHandlers.off(f...)
}

// Remove the connection handlers of the namespace.
func (n *Namespace) OffAll() {
	n.connectionHandlers.offAll()
}
