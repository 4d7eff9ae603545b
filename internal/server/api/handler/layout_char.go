package handler

import (
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutChar returns a handler that resolves the character a key produces
// under a modifier state, along with the behavior's fallback key if any.
func LayoutChar(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.CharRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		var out apitypes.CharResponse
		err := s.With(req.Params["name"], func(m *keymap.Map) error {
			if ch := m.Character(in.KeyCode.Code(), in.MetaState.Meta()); ch != 0 {
				out.Character = string(ch)
			}
			if fb, ok := m.FallbackAction(in.KeyCode.Code(), in.MetaState.Meta()); ok {
				out.Fallback = fb.KeyCode.String()
			}
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		return respond(res, out)
	}
}
