package utils

import (
	"fmt"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karagenc/sio-server/internal/sync"
)

const DefaultTestWaitTimeout = time.Second * 5

// TestWaiter is a sync.WaitGroup that can give up after a timeout.
type TestWaiter struct {
	wg sync.WaitGroup
}

func NewTestWaiter(delta int) *TestWaiter {
	w := new(TestWaiter)
	w.wg.Add(delta)
	return w
}

func (w *TestWaiter) Add(delta int) { w.wg.Add(delta) }

func (w *TestWaiter) Done() { w.wg.Done() }

func (w *TestWaiter) Wait() { w.wg.Wait() }

func (w *TestWaiter) WaitTimeout(t testing.TB, timeout time.Duration) (timedout bool) {
	return waitTimeout(t, &w.wg, timeout)
}

// TestWaiterString tracks named tasks. Calling Done twice on the same
// name, or on a name that was never added, panics.
type TestWaiterString struct {
	wg      sync.WaitGroup
	strings mapset.Set[string]
}

func NewTestWaiterString() *TestWaiterString {
	return &TestWaiterString{strings: mapset.NewSet[string]()}
}

func (w *TestWaiterString) Add(s string) {
	w.strings.Add(s)
	w.wg.Add(1)
}

func (w *TestWaiterString) Done(s string) {
	if !w.strings.Contains(s) {
		panic(fmt.Errorf("TestWaiterString: Done was already called on '%s'", s))
	}
	w.strings.Remove(s)
	w.wg.Done()
}

func (w *TestWaiterString) WaitTimeout(t testing.TB, timeout time.Duration) (timedout bool) {
	return waitTimeout(t, &w.wg, timeout)
}

func waitTimeout(t testing.TB, wg *sync.WaitGroup, timeout time.Duration) bool {
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()

	select {
	case <-c:
		return false
	case <-time.After(timeout):
		t.Error("timeout exceeded")
		return true
	}
}
