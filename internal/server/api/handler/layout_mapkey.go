package handler

import (
	"fmt"
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutMapKey returns a handler that resolves a hardware scan or usage
// code to a key code, then applies the layout's user remap table.
func LayoutMapKey(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.MapKeyRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		var out apitypes.MapKeyResponse
		err := s.With(req.Params["name"], func(m *keymap.Map) error {
			code, ok := m.MapKey(in.ScanCode, in.UsageCode)
			if !ok {
				return api.ErrNotFound(fmt.Sprintf("no key for scan code %d / usage code %d", in.ScanCode, in.UsageCode))
			}
			out.KeyCode = apitypes.KeyCodeValue(m.ApplyKeyRemapping(code))
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		return respond(res, out)
	}
}
