// Package randid generates short random identifiers for things like batch
// runs, where a full UUID is more than a log line needs.
package randid

import (
	"crypto/rand"
	"io"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// limit is the largest multiple of len(alphabet) that fits in a byte. Bytes
// at or above it are discarded so every character is equally likely.
const limit = 256 - 256%len(alphabet)

// Generate returns a random lowercase alphanumeric string of the given length.
// It panics if the system random source fails.
func Generate(length int) string {
	id, err := generate(rand.Reader, length)
	if err != nil {
		panic("randid: crypto/rand failed: " + err.Error())
	}
	return id
}

func generate(r io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
