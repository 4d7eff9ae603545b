// Package apiclient is the Go client for the keymapd management API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/keymap"
)

// Client provides a high-level interface to the keymapd API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the keymapd API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the keymapd server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// LayoutList retrieves the layouts loaded on the server.
func (c *Client) LayoutList() (*apitypes.LayoutListResponse, error) {
	return c.LayoutListCtx(context.Background())
}

func (c *Client) LayoutListCtx(ctx context.Context) (*apitypes.LayoutListResponse, error) {
	const path = "layout/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LayoutListResponse](raw)
}

// LayoutInfo describes a single loaded layout: keyboard type, source file,
// overlay state and the key codes it defines.
func (c *Client) LayoutInfo(name string) (*apitypes.LayoutInfoResponse, error) {
	return c.LayoutInfoCtx(context.Background(), name)
}

func (c *Client) LayoutInfoCtx(ctx context.Context, name string) (*apitypes.LayoutInfoResponse, error) {
	const path = "layout/{name}/info"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LayoutInfoResponse](raw)
}

// Char resolves the character a key produces on the named layout under the
// given modifier state.
func (c *Client) Char(name string, keyCode keymap.KeyCode, metaState keymap.MetaState) (*apitypes.CharResponse, error) {
	return c.CharCtx(context.Background(), name, keyCode, metaState)
}

func (c *Client) CharCtx(ctx context.Context, name string, keyCode keymap.KeyCode, metaState keymap.MetaState) (*apitypes.CharResponse, error) {
	const path = "layout/{name}/char"
	req := apitypes.CharRequest{KeyCode: apitypes.KeyCodeValue(keyCode), MetaState: apitypes.MetaStateValue(metaState)}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CharResponse](raw)
}

// Label reports a key's display label and number-pairing character.
func (c *Client) Label(name string, keyCode keymap.KeyCode) (*apitypes.LabelResponse, error) {
	return c.LabelCtx(context.Background(), name, keyCode)
}

func (c *Client) LabelCtx(ctx context.Context, name string, keyCode keymap.KeyCode) (*apitypes.LabelResponse, error) {
	const path = "layout/{name}/label"
	req := apitypes.LabelRequest{KeyCode: apitypes.KeyCodeValue(keyCode)}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.LabelResponse](raw)
}

// MapKey resolves a hardware scan or usage code to a key code through the
// named layout, including any user remapping.
func (c *Client) MapKey(name string, scanCode, usageCode int32) (*apitypes.MapKeyResponse, error) {
	return c.MapKeyCtx(context.Background(), name, scanCode, usageCode)
}

func (c *Client) MapKeyCtx(ctx context.Context, name string, scanCode, usageCode int32) (*apitypes.MapKeyResponse, error) {
	const path = "layout/{name}/mapkey"
	req := apitypes.MapKeyRequest{ScanCode: scanCode, UsageCode: usageCode}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.MapKeyResponse](raw)
}

// Remap adds a user key remapping on the named layout.
func (c *Client) Remap(name string, from, to keymap.KeyCode) (*apitypes.RemapResponse, error) {
	return c.RemapCtx(context.Background(), name, from, to)
}

func (c *Client) RemapCtx(ctx context.Context, name string, from, to keymap.KeyCode) (*apitypes.RemapResponse, error) {
	const path = "layout/{name}/remap"
	req := apitypes.RemapRequest{From: apitypes.KeyCodeValue(from), To: apitypes.KeyCodeValue(to)}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.RemapResponse](raw)
}

// Events synthesizes the key event sequence that would type text on the
// named layout.
func (c *Client) Events(name string, deviceID int32, text string) (*apitypes.EventsResponse, error) {
	return c.EventsCtx(context.Background(), name, deviceID, text)
}

func (c *Client) EventsCtx(ctx context.Context, name string, deviceID int32, text string) (*apitypes.EventsResponse, error) {
	const path = "layout/{name}/events"
	req := apitypes.EventsRequest{DeviceID: deviceID, Text: text}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.EventsResponse](raw)
}

// Combine layers an overlay layout (passed as .kcm text) over the named
// base layout on the server.
func (c *Client) Combine(name, overlayContents string) (*apitypes.CombineResponse, error) {
	return c.CombineCtx(context.Background(), name, overlayContents)
}

func (c *Client) CombineCtx(ctx context.Context, name, overlayContents string) (*apitypes.CombineResponse, error) {
	const path = "layout/{name}/combine"
	req := apitypes.CombineRequest{Contents: overlayContents}
	raw, err := c.doJSON(ctx, path, req, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.CombineResponse](raw)
}

// Reset clears any overlay applied to the named layout.
func (c *Client) Reset(name string) (*apitypes.ResetResponse, error) {
	return c.ResetCtx(context.Background(), name)
}

func (c *Client) ResetCtx(ctx context.Context, name string) (*apitypes.ResetResponse, error) {
	const path = "layout/{name}/reset"
	raw, err := c.transport.DoCtx(ctx, path, nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	return parse[apitypes.ResetResponse](raw)
}

func (c *Client) doJSON(ctx context.Context, path string, req any, pathParams map[string]string) (string, error) {
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return c.transport.DoCtx(ctx, path, string(payloadBytes), pathParams)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
