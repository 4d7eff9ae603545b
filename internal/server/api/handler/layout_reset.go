package handler

import (
	"fmt"
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutReset returns a handler that clears any applied overlay, restoring
// the layout to its on-disk state. User remappings survive the reset.
func LayoutReset(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		err := s.Mutate(req.Params["name"], func(m *keymap.Map) error {
			if err := m.ClearLayoutOverlay(); err != nil {
				return api.ErrInternal(fmt.Sprintf("reset failed: %v", err))
			}
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		logger.Info("layout overlay cleared", "layout", req.Params["name"])
		return respond(res, apitypes.ResetResponse{OverlayApplied: false})
	}
}
