package sio

import mapset "github.com/deckarep/golang-set/v2"

// Only read after init, so a thread unsafe set is fine.
var reservedEvents = mapset.NewThreadUnsafeSet(
	"connect",
	"connect_error",
	"connection",
	"disconnect",
	"disconnecting",
	"error",
	"newListener",
	"removeListener",
)

// Reserved events can neither be emitted nor listened to with OnEvent.
func IsEventReserved(eventName string) bool {
	return reservedEvents.Contains(eventName)
}
