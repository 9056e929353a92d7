package common

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// randReader is a test seam for crypto/rand.Reader.
var randReader io.Reader = rand.Reader

// RandomBytes returns n bytes read from the system CSPRNG.
// It returns an error only when the entropy source fails.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b, err := RandomBytes(size)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
