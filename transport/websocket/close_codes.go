package websocket

import "nhooyr.io/websocket"

// Close codes that are reported as a regular close rather than an error.
var expectedCloseCodes = []websocket.StatusCode{
	websocket.StatusNormalClosure,
	websocket.StatusGoingAway,
	websocket.StatusNoStatusRcvd,
	websocket.StatusAbnormalClosure,
}

func isExpectedClose(status websocket.StatusCode) bool {
	for _, expected := range expectedCloseCodes {
		if status == expected {
			return true
		}
	}
	return false
}
