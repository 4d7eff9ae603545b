package auth

// Wire constants for the keymapd authenticated session protocol.
//
// A client that wants an encrypted session opens the connection with a
// greeting instead of a request line:
//
//	"eKM1\x00" || clientNonce[32] || HMAC-SHA256(key, contextAuth || "client" || clientNonce)
//
// The server answers with an RFC 7807 error line, or with
//
//	"OK\x00" || serverNonce[32] || HMAC-SHA256(key, contextAuth || "server" || serverNonce || clientNonce)
//
// proving it also holds the key. Both sides then derive the session key from
// the key and both nonces and switch to AEAD frames (see conn.go), inside
// which the client sends its single null-terminated request and reads the
// response line.
const (
	Greeting   = "eKM1\x00"
	GreetingOK = "OK\x00"

	// NonceSize is the length of the handshake nonces. Frame nonces used by
	// Conn are derived, not transmitted.
	NonceSize = 32

	// TagSize is the length of the handshake authentication tags (HMAC-SHA256).
	TagSize = 32

	contextAuth    = "keymapd-Auth-v1"
	contextSession = "keymapd-Session-v1"

	keySalt       = "keymapd-Key-v1"
	keyIterations = 100000
	keyLength     = 32

	AutoGenKeyLength = 16
	Base62Chars      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// maxFrame bounds the plaintext carried by a single AEAD frame. Larger
	// payloads (full layout dumps, big overlays) are split across frames.
	maxFrame = 64 * 1024
)
