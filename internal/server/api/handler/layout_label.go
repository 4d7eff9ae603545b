package handler

import (
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutLabel returns a handler that reports a key's display label and
// number-pairing character.
func LayoutLabel(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.LabelRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		var out apitypes.LabelResponse
		err := s.With(req.Params["name"], func(m *keymap.Map) error {
			if label := m.DisplayLabel(in.KeyCode.Code()); label != 0 {
				out.Label = string(label)
			}
			if number := m.Number(in.KeyCode.Code()); number != 0 {
				out.Number = string(number)
			}
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		return respond(res, out)
	}
}
