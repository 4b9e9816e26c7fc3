package sio

type (
	ServerNewNamespaceFunc  func(namespace *Namespace)
	ServerAnyConnectionFunc func(namespace string, socket ServerSocket)
)

func (s *Server) OnNewNamespace(f ServerNewNamespaceFunc) {
	s.newNamespaceHandlers.on(f)
}

func (s *Server) OnceNewNamespace(f ServerNewNamespaceFunc) {
	s.newNamespaceHandlers.once(f)
}

func (s *Server) OffNewNamespace(f ...ServerNewNamespaceFunc) {
	s.newNamespaceHandlers.off(f...)
}

// Called after the connection handlers of any namespace.
func (s *Server) OnAnyConnection(f ServerAnyConnectionFunc) {
	s.anyConnectionHandlers.on(f)
}

func (s *Server) OnceAnyConnection(f ServerAnyConnectionFunc) {
	s.anyConnectionHandlers.once(f)
}

func (s *Server) OffAnyConnection(f ...ServerAnyConnectionFunc) {
	s.anyConnectionHandlers.off(f...)
}

// Shorthands for the default namespace.

func (s *Server) OnConnection(f NamespaceConnectionFunc) {
	s.Of("/").OnConnection(f)
}

// Alias of OnConnection
func (s *Server) OnConnect(f NamespaceConnectionFunc) {
	s.Of("/").OnConnection(f)
}

func (s *Server) OnceConnection(f NamespaceConnectionFunc) {
	s.Of("/").OnceConnection(f)
}

func (s *Server) OffConnection(f ...NamespaceConnectionFunc) {
	s.Of("/").OffConnection(f...)
}
