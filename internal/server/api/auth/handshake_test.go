package auth_test

import (
	"bufio"
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/virtkbd/keymapd/internal/server/api/auth"
	apierror "github.com/virtkbd/keymapd/internal/server/api/error"
)

// clientGreeting builds the bytes a client opens the connection with.
func clientGreeting(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("keymapd-Auth-v1"))
	mac.Write([]byte("client"))
	mac.Write(clientNonce)
	msg := append([]byte(auth.Greeting), clientNonce...)
	return append(msg, mac.Sum(nil)...)
}

func TestIsGreeting(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		expected    bool
		expectedErr error
	}

	testCases := []testCase{
		{
			name:     "session greeting",
			input:    []byte(auth.Greeting),
			expected: true,
		},
		{
			name:     "plaintext request line",
			input:    []byte("layout/qwerty/info\x00"),
			expected: false,
		},
		{
			name:        "truncated greeting",
			input:       []byte("eK"),
			expectedErr: fmt.Errorf("EOF"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := auth.IsGreeting(bufio.NewReader(bytes.NewReader(tc.input)))
			if tc.expectedErr != nil {
				assert.EqualError(t, err, tc.expectedErr.Error())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestAccept(t *testing.T) {
	key, err := auth.DeriveKey("hunter2")
	assert.NoError(t, err)
	wrongKey, err := auth.DeriveKey("swordfish")
	assert.NoError(t, err)

	clientNonce := make([]byte, auth.NonceSize)
	for i := range clientNonce {
		clientNonce[i] = byte(i)
	}

	type testCase struct {
		name        string
		input       []byte
		writer      io.Writer
		key         []byte
		expectedErr error
	}

	testCases := []testCase{
		{
			name:   "valid greeting",
			input:  clientGreeting(key, clientNonce),
			writer: bytes.NewBuffer(nil),
			key:    key,
		},
		{
			name:        "wrong password",
			input:       clientGreeting(wrongKey, clientNonce),
			writer:      bytes.NewBuffer(nil),
			key:         key,
			expectedErr: apierror.ErrUnauthorized("invalid password"),
		},
		{
			name:        "truncated nonce",
			input:       append([]byte(auth.Greeting), 1, 2, 3),
			writer:      bytes.NewBuffer(nil),
			key:         key,
			expectedErr: fmt.Errorf("read client nonce: unexpected EOF"),
		},
		{
			name:        "missing tag",
			input:       append([]byte(auth.Greeting), clientNonce...),
			writer:      bytes.NewBuffer(nil),
			key:         key,
			expectedErr: fmt.Errorf("read client tag: EOF"),
		},
		{
			name:        "empty connection",
			input:       []byte("eK"),
			writer:      bytes.NewBuffer(nil),
			key:         key,
			expectedErr: fmt.Errorf("discard greeting magic: EOF"),
		},
		{
			name:        "nil writer",
			input:       clientGreeting(key, clientNonce),
			writer:      nil,
			key:         key,
			expectedErr: fmt.Errorf("write greeting reply: write on nil pointer"),
		},
		{
			name:  "closed writer",
			input: clientGreeting(key, clientNonce),
			writer: func() io.Writer {
				_, w := io.Pipe()
				w.Close()
				return w
			}(),
			key:         key,
			expectedErr: fmt.Errorf("write greeting reply: io: read/write on closed pipe"),
		},
		{
			name:        "missing key",
			input:       clientGreeting(key, clientNonce),
			writer:      bytes.NewBuffer(nil),
			key:         nil,
			expectedErr: fmt.Errorf("accept: missing key"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessionKey, err := auth.Accept(bufio.NewReader(bytes.NewReader(tc.input)), tc.writer, tc.key)
			if tc.expectedErr != nil {
				assert.EqualError(t, err, tc.expectedErr.Error())
				return
			}
			assert.NoError(t, err)
			assert.Len(t, sessionKey, 32)

			reply := tc.writer.(*bytes.Buffer).Bytes()
			assert.Len(t, reply, len(auth.GreetingOK)+auth.NonceSize+auth.TagSize)
			assert.Equal(t, auth.GreetingOK, string(reply[:len(auth.GreetingOK)]))

			serverNonce := reply[len(auth.GreetingOK) : len(auth.GreetingOK)+auth.NonceSize]
			serverTag := reply[len(auth.GreetingOK)+auth.NonceSize:]
			mac := hmac.New(sha256.New, tc.key)
			mac.Write([]byte("keymapd-Auth-v1"))
			mac.Write([]byte("server"))
			mac.Write(serverNonce)
			mac.Write(clientNonce)
			assert.True(t, hmac.Equal(serverTag, mac.Sum(nil)), "server tag should authenticate the server")
		})
	}
}

func TestLoginAccept(t *testing.T) {
	serverKey, err := auth.DeriveKey("hunter2")
	assert.NoError(t, err)

	type testCase struct {
		name          string
		clientKey     string
		serverHandler func(t *testing.T, conn net.Conn)
		expectedKey   bool
		expectedErr   error
	}

	acceptHandler := func(t *testing.T, conn net.Conn) {
		defer conn.Close()
		sessionKey, err := auth.Accept(bufio.NewReader(conn), conn, serverKey)
		if err != nil {
			b, merr := json.Marshal(apierror.WrapError(err))
			assert.NoError(t, merr)
			_, _ = conn.Write(append(b, '\n'))
			return
		}
		assert.Len(t, sessionKey, 32)
	}

	impostorHandler := func(t *testing.T, conn net.Conn) {
		defer conn.Close()
		greeting := make([]byte, len(auth.Greeting)+auth.NonceSize+auth.TagSize)
		_, err := io.ReadFull(conn, greeting)
		assert.NoError(t, err)
		junk := make([]byte, auth.NonceSize+auth.TagSize)
		_, _ = rand.Read(junk)
		_, _ = conn.Write(append([]byte(auth.GreetingOK), junk...))
	}

	testCases := []testCase{
		{
			name:          "matching password",
			clientKey:     "hunter2",
			serverHandler: acceptHandler,
			expectedKey:   true,
		},
		{
			name:          "wrong password",
			clientKey:     "swordfish",
			serverHandler: acceptHandler,
			expectedErr:   fmt.Errorf("401 Unauthorized: invalid password"),
		},
		{
			name:          "impostor server",
			clientKey:     "hunter2",
			serverHandler: impostorHandler,
			expectedErr:   fmt.Errorf("server failed authentication"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clientEnd, serverEnd := net.Pipe()
			defer clientEnd.Close()

			go tc.serverHandler(t, serverEnd)

			key, err := auth.DeriveKey(tc.clientKey)
			assert.NoError(t, err)
			sessionKey, err := auth.Login(clientEnd, clientEnd, key)

			if tc.expectedErr != nil {
				assert.EqualError(t, err, tc.expectedErr.Error())
				return
			}
			assert.NoError(t, err)
			assert.Len(t, sessionKey, 32)
		})
	}
}

func TestSessionKeyAgreement(t *testing.T) {
	key, err := auth.DeriveKey("hunter2")
	assert.NoError(t, err)

	clientEnd, serverEnd := net.Pipe()
	defer clientEnd.Close()
	defer serverEnd.Close()

	serverDone := make(chan []byte, 1)
	go func() {
		sessionKey, err := auth.Accept(bufio.NewReader(serverEnd), serverEnd, key)
		assert.NoError(t, err)
		serverDone <- sessionKey
	}()

	clientKey, err := auth.Login(clientEnd, clientEnd, key)
	assert.NoError(t, err)
	serverSessionKey := <-serverDone

	assert.Len(t, clientKey, 32)
	assert.Equal(t, serverSessionKey, clientKey, "both ends must derive the same session key")
}
