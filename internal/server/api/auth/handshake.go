package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/virtkbd/keymapd/apitypes"
	apierror "github.com/virtkbd/keymapd/internal/server/api/error"
)

// IsGreeting reports whether the connection opens with the session greeting
// rather than a plaintext request line. Consumes nothing.
func IsGreeting(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(Greeting))
	if err != nil {
		return false, err
	}
	return string(b) == Greeting, nil
}

// authTag computes the handshake authentication tag for one side.
// The role string keeps client and server tags distinct even over
// identical nonce material.
func authTag(key []byte, role string, nonces ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(contextAuth))
	_, _ = mac.Write([]byte(role))
	for _, n := range nonces {
		_, _ = mac.Write(n)
	}
	return mac.Sum(nil)
}

// Login runs the client side of the handshake on a fresh connection and
// returns the session key to encrypt the request with. A non-OK reply is
// surfaced as the server's RFC 7807 error when it parses as one.
func Login(r io.Reader, w io.Writer, key []byte) ([]byte, error) {
	if r == nil || w == nil {
		return nil, fmt.Errorf("login: nil connection")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("login: missing key")
	}

	clientNonce := make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, fmt.Errorf("generate client nonce: %w", err)
	}

	msg := append([]byte(Greeting), clientNonce...)
	msg = append(msg, authTag(key, "client", clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, fmt.Errorf("write greeting: %w", err)
	}

	prefix := make([]byte, len(GreetingOK))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read greeting reply: %w", err)
	}
	if string(prefix) != GreetingOK {
		rest, _ := io.ReadAll(r)
		raw := append(prefix, rest...)
		line := strings.TrimSuffix(string(raw), "\n")

		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("unexpected greeting reply: %s", line)
	}

	serverNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, fmt.Errorf("read server nonce: %w", err)
	}
	serverTag := make([]byte, TagSize)
	if _, err := io.ReadFull(r, serverTag); err != nil {
		return nil, fmt.Errorf("read server tag: %w", err)
	}
	if !hmac.Equal(serverTag, authTag(key, "server", serverNonce, clientNonce)) {
		return nil, fmt.Errorf("server failed authentication")
	}

	return sessionKey(key, clientNonce, serverNonce), nil
}

// Accept runs the server side of the handshake. The greeting magic must
// still be unconsumed in r. On success the OK reply has been written and
// the returned session key matches the client's.
func Accept(r *bufio.Reader, w io.Writer, key []byte) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("accept: nil reader")
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("accept: missing key")
	}

	if _, err := r.Discard(len(Greeting)); err != nil {
		return nil, fmt.Errorf("discard greeting magic: %w", err)
	}

	clientNonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(r, clientNonce); err != nil {
		return nil, fmt.Errorf("read client nonce: %w", err)
	}
	clientTag := make([]byte, TagSize)
	if _, err := io.ReadFull(r, clientTag); err != nil {
		return nil, fmt.Errorf("read client tag: %w", err)
	}
	if !hmac.Equal(clientTag, authTag(key, "client", clientNonce)) {
		return nil, apierror.ErrUnauthorized("invalid password")
	}

	if w == nil {
		return nil, fmt.Errorf("write greeting reply: write on nil pointer")
	}
	serverNonce := make([]byte, NonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		return nil, fmt.Errorf("generate server nonce: %w", err)
	}
	reply := append([]byte(GreetingOK), serverNonce...)
	reply = append(reply, authTag(key, "server", serverNonce, clientNonce)...)
	if _, err := w.Write(reply); err != nil {
		return nil, fmt.Errorf("write greeting reply: %w", err)
	}

	return sessionKey(key, clientNonce, serverNonce), nil
}
