package handler

import (
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutList returns a handler that lists the loaded layouts.
func LayoutList(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		out := apitypes.LayoutListResponse{Layouts: []apitypes.LayoutSummary{}}
		for _, name := range s.Names() {
			err := s.With(name, func(m *keymap.Map) error {
				out.Layouts = append(out.Layouts, apitypes.LayoutSummary{
					Name:         name,
					KeyboardType: m.KeyboardType().String(),
					NumKeys:      len(m.KeyCodes()),
				})
				return nil
			})
			if err != nil {
				// Raced with a watcher removal; skip it.
				continue
			}
		}
		return respond(res, out)
	}
}
