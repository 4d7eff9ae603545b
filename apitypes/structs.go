// Package apitypes holds the request and response shapes of the keymapd
// TCP API. Key codes travel as Android key code names ("A", "NUMPAD_4") or
// raw numbers; modifier masks travel as '+'-joined .kcm token names
// ("shift+capslock") or raw numbers.
package apitypes

import (
	"encoding/json"
	"fmt"

	"github.com/virtkbd/keymapd/keymap"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// KeyCodeValue accepts a key code as a name or a number in JSON and always
// marshals back as the name.
type KeyCodeValue keymap.KeyCode

func (v KeyCodeValue) Code() keymap.KeyCode { return keymap.KeyCode(v) }

func (v KeyCodeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(keymap.KeyCode(v).String())
}

func (v *KeyCodeValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case float64:
		*v = KeyCodeValue(int32(val))
		return nil
	case string:
		code, ok := keymap.KeyCodeByName(val)
		if !ok {
			return fmt.Errorf("unknown key code %q", val)
		}
		*v = KeyCodeValue(code)
		return nil
	default:
		return fmt.Errorf("expected key code name or number, got %T", raw)
	}
}

// MetaStateValue accepts a modifier mask as a token string or a number in
// JSON and always marshals back as the token string.
type MetaStateValue keymap.MetaState

func (v MetaStateValue) Meta() keymap.MetaState { return keymap.MetaState(v) }

func (v MetaStateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(keymap.MetaState(v).String())
}

func (v *MetaStateValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case float64:
		*v = MetaStateValue(int32(val))
		return nil
	case string:
		meta, err := keymap.ParseMetaState(val)
		if err != nil {
			return err
		}
		*v = MetaStateValue(meta)
		return nil
	default:
		return fmt.Errorf("expected modifier tokens or number, got %T", raw)
	}
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type LayoutSummary struct {
	Name         string `json:"name"`
	KeyboardType string `json:"keyboardType"`
	NumKeys      int    `json:"numKeys"`
}

type LayoutListResponse struct {
	Layouts []LayoutSummary `json:"layouts"`
}

type LayoutInfoResponse struct {
	Name           string   `json:"name"`
	KeyboardType   string   `json:"keyboardType"`
	File           string   `json:"file"`
	OverlayApplied bool     `json:"overlayApplied"`
	KeyCodes       []string `json:"keyCodes"`
}

type CharRequest struct {
	KeyCode   KeyCodeValue   `json:"keyCode"`
	MetaState MetaStateValue `json:"metaState"`
}

type CharResponse struct {
	Character string `json:"character"`
	// Fallback carries the fallback key the behavior names, if any.
	Fallback string `json:"fallback,omitempty"`
}

type LabelRequest struct {
	KeyCode KeyCodeValue `json:"keyCode"`
}

type LabelResponse struct {
	Label  string `json:"label"`
	Number string `json:"number"`
}

type MapKeyRequest struct {
	ScanCode  int32 `json:"scanCode"`
	UsageCode int32 `json:"usageCode,omitempty"`
}

type MapKeyResponse struct {
	KeyCode KeyCodeValue `json:"keyCode"`
}

type RemapRequest struct {
	From KeyCodeValue `json:"from"`
	To   KeyCodeValue `json:"to"`
}

type RemapResponse struct {
	From KeyCodeValue `json:"from"`
	To   KeyCodeValue `json:"to"`
}

type EventsRequest struct {
	DeviceID int32  `json:"deviceId"`
	Text     string `json:"text"`
}

type Event struct {
	DeviceID  int32          `json:"deviceId"`
	Time      int64          `json:"time"`
	Action    string         `json:"action"`
	KeyCode   KeyCodeValue   `json:"keyCode"`
	MetaState MetaStateValue `json:"metaState"`
}

type EventsResponse struct {
	Events []Event `json:"events"`
}

type CombineRequest struct {
	// Contents is the overlay layout text to layer over the base layout.
	Contents string `json:"contents"`
}

type CombineResponse struct {
	OverlayApplied bool `json:"overlayApplied"`
}

type ResetResponse struct {
	OverlayApplied bool `json:"overlayApplied"`
}
