package echoweb

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	sessionKeyInfo = "gradebook session signing"
	flashKeyInfo   = "gradebook flash cookie"
	derivedKeyLen  = 32
)

// deriveKey expands the configured secret into a key dedicated to info.
func deriveKey(secret, info string) []byte {
	key := make([]byte, derivedKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		panic(err) // hkdf only fails past 255 blocks
	}
	return key
}
