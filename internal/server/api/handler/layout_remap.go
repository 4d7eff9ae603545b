package handler

import (
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutRemap returns a handler that adds a user key remapping to a layout.
func LayoutRemap(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.RemapRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		err := s.Mutate(req.Params["name"], func(m *keymap.Map) error {
			m.AddKeyRemapping(in.From.Code(), in.To.Code())
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		logger.Info("key remapped", "layout", req.Params["name"], "from", in.From.Code(), "to", in.To.Code())
		return respond(res, apitypes.RemapResponse{From: in.From, To: in.To})
	}
}
