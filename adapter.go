package sio

import "github.com/karagenc/sio-server/adapter"

type (
	SocketID = adapter.SocketID
	Room     = adapter.Room

	Adapter           = adapter.Adapter
	AdapterCreator    = adapter.Creator
	BroadcastOperator = adapter.BroadcastOperator
)
