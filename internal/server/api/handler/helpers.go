package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
)

// decode unmarshals a request payload, normalizing failures to 400s.
func decode(payload string, v any) error {
	if payload == "" {
		return api.ErrBadRequest("missing request payload")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return api.ErrBadRequest(fmt.Sprintf("invalid payload: %v", err))
	}
	return nil
}

// wrapStoreErr maps store lookup failures to 404s, passing everything else
// through untouched.
func wrapStoreErr(err error) error {
	var nf layouts.ErrNotFound
	if errors.As(err, &nf) {
		return api.ErrNotFound(nf.Error())
	}
	return err
}

// respond marshals v into the response.
func respond(res *api.Response, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return api.ErrInternal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	res.JSON = string(b)
	return nil
}
