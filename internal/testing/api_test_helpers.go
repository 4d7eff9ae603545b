package testing

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
)

// NewLayoutStore writes the given layouts (name -> .kcm contents) into a
// temp directory and opens a store over it.
func NewLayoutStore(t *testing.T, files map[string]string) *layouts.Store {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name+".kcm"), []byte(contents), 0o644); err != nil {
			t.Fatalf("write layout %s: %v", name, err)
		}
	}
	s, err := layouts.Open(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open layout store: %v", err)
	}
	return s
}

// StartAPIServer starts an API server on a free port and calls register to
// allow the caller to register the handlers needed for the test. Returns
// the address and a function to call when done.
func StartAPIServer(t *testing.T, cfg api.ServerConfig, register func(r *api.Router)) (addr string, done func()) {
	t.Helper()
	apiSrv := api.New("127.0.0.1:0", cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if register != nil {
		register(apiSrv.Router())
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}
	addr = apiSrv.Addr().String()

	done = func() {
		apiSrv.Close()
		time.Sleep(10 * time.Millisecond)
	}
	return addr, done
}

// ExecCmd dials the API server, sends cmd and reads the full response.
// The command should not include a trailing newline. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	// Null terminator matches the API server framing
	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}

	result := strings.TrimSuffix(line, "\n")
	result = strings.TrimSuffix(result, "\r")
	return result
}

// ExecuteLine routes a command string through the provided router,
// emulating the API server's dispatch but without network IO. The data
// parameter is the full request data (path + optional payload).
func ExecuteLine(t *testing.T, r *api.Router, data string) string {
	t.Helper()
	if data == "" {
		return jsonError("empty")
	}

	var path, payload string
	if i := strings.IndexFunc(data, unicode.IsSpace); i >= 0 {
		path = data[:i]
		payload = data[i+1:]
	} else {
		path = data
	}

	if path == "" {
		return jsonError("empty path")
	}

	path = strings.ToLower(path)

	if h, params := r.Match(path); h != nil {
		req := &api.Request{Params: params, Payload: payload}
		res := &api.Response{}
		if err := h(req, res, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
			return jsonError(err.Error())
		}
		return res.JSON
	}
	return jsonError("unknown path")
}

func jsonError(msg string) string {
	problem := map[string]string{"error": msg}
	b, _ := json.Marshal(problem)
	return string(b)
}
