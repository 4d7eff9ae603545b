package apiclient_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/virtkbd/keymapd/apiclient"
	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/keymap"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps paths (before path param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	}))
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any)
	}{
		{
			name: "ping success",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"keymapd","version":"0.1.0"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any) {
				r, ok := got.(*apitypes.PingResponse)
				assert.True(t, ok, "expected *apitypes.PingResponse type")
				assert.Equal(t, "keymapd", r.Server)
			},
		},
		{
			name: "layout list",
			setup: func(responses map[string]string) error {
				responses["layout/list"] = `{"layouts":[{"name":"qwerty","keyboardType":"FULL","numKeys":48}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.LayoutList() },
			assertFunc: func(t *testing.T, got any) {
				r := got.(*apitypes.LayoutListResponse)
				assert.Len(t, r.Layouts, 1)
				assert.Equal(t, "qwerty", r.Layouts[0].Name)
			},
		},
		{
			name: "char resolves key code names",
			setup: func(responses map[string]string) error {
				responses["layout/{name}/char"] = `{"character":"A"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.Char("qwerty", keymap.KeyA, keymap.MetaShiftOn)
			},
			assertFunc: func(t *testing.T, got any) {
				r := got.(*apitypes.CharResponse)
				assert.Equal(t, "A", r.Character)
			},
		},
		{
			name: "events decode names and masks",
			setup: func(responses map[string]string) error {
				responses["layout/{name}/events"] = `{"events":[{"deviceId":1,"time":10,"action":"down","keyCode":"SHIFT_LEFT","metaState":"shift+lshift"}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Events("qwerty", 1, "A") },
			assertFunc: func(t *testing.T, got any) {
				r := got.(*apitypes.EventsResponse)
				assert.Len(t, r.Events, 1)
				assert.Equal(t, keymap.KeyShiftLeft, r.Events[0].KeyCode.Code())
				assert.True(t, r.Events[0].MetaState.Meta().Has(keymap.MetaShiftOn))
			},
		},
		{
			name: "structured error",
			setup: func(responses map[string]string) error {
				responses["layout/{name}/remap"] = `{"status":404,"title":"Not Found","detail":"layout \"nope\" not loaded"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.Remap("nope", keymap.KeyA, keymap.KeyB)
			},
			wantErr: `404 Not Found: layout "nope" not loaded`,
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.LayoutList() },
			wantErr: "dial fail",
		},
		{
			name:    "empty response",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.Reset("qwerty") },
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			err := tt.setup(responses)
			c := testClient(responses, err)

			got, callErr := tt.call(c)
			if tt.wantErr != "" {
				assert.ErrorContains(t, callErr, tt.wantErr)
				return
			}
			assert.NoError(t, callErr)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got)
			}
		})
	}
}
