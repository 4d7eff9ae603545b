package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// role tags the origin of a frame. It is baked into the (untransmitted)
// frame nonce so the two directions of a session can never consume the
// same nonce under the shared key.
type role byte

const (
	roleClient role = 0x01
	roleServer role = 0x02
)

func (r role) peer() role {
	if r == roleClient {
		return roleServer
	}
	return roleClient
}

// Conn carries the encrypted half of a session: every Write seals one or
// more AEAD frames of at most maxFrame plaintext bytes, every Read opens
// the next frame and buffers its plaintext.
//
// Frame wire format: 4-byte big-endian ciphertext length || ciphertext.
// Nonces never travel on the wire. Each side seals with
// nonce = [origin role, 0, 0, 0, counter(8)] and opens with the peer role,
// incrementing its counter per frame, so frames cannot be reordered,
// dropped, or reflected back to their sender without failing the AEAD open.
type Conn struct {
	net.Conn
	aead    cipher.AEAD
	origin  role
	sendCtr uint64
	recvCtr uint64
	recvBuf bytes.Buffer
	mu      sync.Mutex
}

// WrapClient wraps the client end of an authenticated connection.
func WrapClient(conn net.Conn, key []byte) (net.Conn, error) {
	return wrap(conn, key, roleClient)
}

// WrapServer wraps the server end of an authenticated connection.
func WrapServer(conn net.Conn, key []byte) (net.Conn, error) {
	return wrap(conn, key, roleServer)
}

func wrap(conn net.Conn, key []byte, origin role) (net.Conn, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead, origin: origin}, nil
}

func frameNonce(origin role, ctr uint64) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	nonce[0] = byte(origin)
	binary.BigEndian.PutUint64(nonce[4:], ctr)
	return nonce
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for first := true; first || len(p) > 0; first = false {
		chunk := p
		if len(chunk) > maxFrame {
			chunk = chunk[:maxFrame]
		}
		p = p[len(chunk):]

		ct := c.aead.Seal(nil, frameNonce(c.origin, c.sendCtr), chunk, nil)
		c.sendCtr++

		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], uint32(len(ct)))
		if _, err := c.Conn.Write(hdr[:]); err != nil {
			return total, err
		}
		if _, err := c.Conn.Write(ct); err != nil {
			return total, err
		}
		total += len(chunk)
	}
	return total, nil
}

func (c *Conn) Read(p []byte) (int, error) {
	for c.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > uint32(maxFrame+c.aead.Overhead()) {
			return 0, io.ErrUnexpectedEOF
		}

		ct := make([]byte, length)
		if _, err := io.ReadFull(c.Conn, ct); err != nil {
			return 0, err
		}

		pt, err := c.aead.Open(nil, frameNonce(c.origin.peer(), c.recvCtr), ct, nil)
		if err != nil {
			return 0, err
		}
		c.recvCtr++

		c.recvBuf.Write(pt)
	}
	return c.recvBuf.Read(p)
}
