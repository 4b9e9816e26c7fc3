package sio

import "github.com/karagenc/sio-server/debug"

type Debugger = debug.Debugger

var (
	NewNoopDebugger  = debug.NewNoopDebugger
	NewPrintDebugger = debug.NewPrintDebugger
	NewZapDebugger   = debug.NewZapDebugger
)
