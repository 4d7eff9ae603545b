package log

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"
)

// WireLogger records raw API traffic for protocol debugging.
type WireLogger interface {
	Log(inbound bool, data []byte)
}

// wireLogger implements WireLogger with serialized writes.
type wireLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWire creates a new WireLogger. If w is nil, every Log call is a no-op.
func NewWire(w io.Writer) WireLogger {
	return &wireLogger{w: w}
}

// Log emits one line per traffic chunk with timestamp and direction.
// inbound=true means client->server. The API protocol is mostly text, so
// printable chunks are logged quoted; anything else falls back to hex.
func (l *wireLogger) Log(inbound bool, data []byte) {
	if l.w == nil || len(data) == 0 {
		return
	}

	dir := "srv>"
	if inbound {
		dir = "cli>"
	}

	var payload string
	if utf8.Valid(data) {
		payload = strconv.Quote(string(data))
	} else {
		payload = fmt.Sprintf("hex %x", data)
	}

	line := fmt.Sprintf("%s %s %d bytes: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		len(data),
		payload)

	l.mu.Lock()
	_, _ = l.w.Write([]byte(line))
	l.mu.Unlock()
}
