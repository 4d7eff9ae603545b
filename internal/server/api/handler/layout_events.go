package handler

import (
	"fmt"
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	"github.com/virtkbd/keymapd/keymap"
)

// LayoutEvents returns a handler that synthesizes the key event sequence
// producing a text string on the named layout.
func LayoutEvents(s *layouts.Store) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		var in apitypes.EventsRequest
		if err := decode(req.Payload, &in); err != nil {
			return err
		}
		if in.Text == "" {
			return api.ErrBadRequest("text must not be empty")
		}
		var out apitypes.EventsResponse
		err := s.With(req.Params["name"], func(m *keymap.Map) error {
			events, err := m.Events(in.DeviceID, in.Text)
			if err != nil {
				return api.ErrBadRequest(fmt.Sprintf("cannot synthesize events: %v", err))
			}
			out.Events = make([]apitypes.Event, len(events))
			for i, ev := range events {
				out.Events[i] = apitypes.Event{
					DeviceID:  ev.DeviceID,
					Time:      ev.Time,
					Action:    ev.Action.String(),
					KeyCode:   apitypes.KeyCodeValue(ev.KeyCode),
					MetaState: apitypes.MetaStateValue(ev.MetaState),
				}
			}
			return nil
		})
		if err != nil {
			return wrapStoreErr(err)
		}
		return respond(res, out)
	}
}
