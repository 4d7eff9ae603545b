package handler

import (
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutInfo returns a handler that describes a single layout.
func LayoutInfo(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var out apitypes.LayoutInfoResponse
		err := s.With(req.Params["name"], func(m *keymap.Map) error {
			out = apitypes.LayoutInfoResponse{
				Name:           req.Params["name"],
				KeyboardType:   m.KeyboardType().String(),
				File:           m.LoadFileName(),
				OverlayApplied: m.LayoutOverlayApplied(),
			}
			for _, code := range m.KeyCodes() {
				out.KeyCodes = append(out.KeyCodes, code.String())
			}
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		return respond(res, out)
	}
}
