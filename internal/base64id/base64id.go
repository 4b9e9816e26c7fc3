// Package base64id generates the URL-safe identifiers handed out to
// connections and sockets.
package base64id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/karagenc/sio-server/internal/sync"
)

const (
	Size   = 15
	MaxTry = 10
)

var (
	ErrMaxTryReached = fmt.Errorf("base64id: generation failed: max try reached")
	errInvalidSize   = fmt.Errorf("base64id: generation failed: invalid size")

	mu  sync.Mutex
	seq uint32 // Keeps two ids generated within the same process apart.
)

// Generate returns a random id of `size` bytes, base64 (URL) encoded.
// The last 4 bytes carry a process-wide sequence number.
func Generate(size int) (string, error) {
	if size <= 4 {
		return "", errInvalidSize
	}

	mu.Lock()
	n := seq
	seq++
	mu.Unlock()

	b := make([]byte, size)
	offset := size - 4
	binary.BigEndian.PutUint32(b[offset:], n)

	_, err := rand.Read(b[:offset])
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateUnique retries Generate until exists reports false for the candidate.
func GenerateUnique(exists func(id string) bool) (string, error) {
	for i := 0; ; i++ {
		id, err := Generate(Size)
		if err != nil {
			return "", err
		}
		if !exists(id) {
			return id, nil
		}
		if i == MaxTry {
			return "", ErrMaxTryReached
		}
	}
}
