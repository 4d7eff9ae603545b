package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// GenerateKey creates a random 16-char base62 key
func GenerateKey() (string, error) {
	randomBytes := make([]byte, AutoGenKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	key := make([]byte, AutoGenKeyLength)
	for i, b := range randomBytes {
		key[i] = Base62Chars[int(b)%62]
	}

	return string(key), nil
}

// DeriveKey uses PBKDF2 to stretch any password to 32 bytes
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("Password cannot be empty")
	}
	return pbkdf2.Key(
		[]byte(password),
		[]byte(keySalt),
		keyIterations,
		keyLength,
		sha256.New,
	), nil
}

// sessionKey mixes the shared key with both handshake nonces so that each
// connection encrypts under a fresh AEAD key even when the password repeats.
func sessionKey(key, clientNonce, serverNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(clientNonce)
	h.Write(serverNonce)
	h.Write([]byte(contextSession))
	return h.Sum(nil)
}
