//go:build !sio_deadlock

// Package sync aliases the primitives used across the server so that
// building with the sio_deadlock tag swaps them for deadlock-detecting ones.
package sync

import "sync"

type (
	Mutex     = sync.Mutex
	RWMutex   = sync.RWMutex
	Once      = sync.Once
	WaitGroup = sync.WaitGroup
)
