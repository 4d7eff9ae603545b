package handler

import (
	"fmt"
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutCombine returns a handler that parses an overlay layout from the
// request payload and layers it over the named base layout.
func LayoutCombine(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.CombineRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		if in.Contents == "" {
			return api.ErrBadRequest("overlay contents must not be empty")
		}
		overlay, err := keymap.LoadContents("overlay.kcm", in.Contents, keymap.FormatOverlay)
		if err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid overlay: %v", err))
		}
		err = s.Mutate(req.Params["name"], func(m *keymap.Map) error {
			m.Combine(overlay)
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		logger.Info("layout overlay applied", "layout", req.Params["name"], "overlayKeys", len(overlay.KeyCodes()))
		return respond(res, apitypes.CombineResponse{OverlayApplied: true})
	}
}
