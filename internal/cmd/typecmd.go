package cmd

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/keymap"
)

// Type synthesizes the key event sequence that would produce a text string
// on a layout, printing it as JSON or replaying it on a virtual keyboard.
type Type struct {
	Path     string        `arg:"" name:"path" help:"Layout file (.kcm)" type:"existingfile"`
	Text     string        `arg:"" name:"text" help:"Text to synthesize key events for"`
	DeviceID int32         `help:"Device id stamped on the events" default:"1"`
	Inject   bool          `help:"Replay the events on a virtual uinput keyboard (Linux only)"`
	Delay    time.Duration `help:"Delay between injected events" default:"5ms"`
}

func (t *Type) Run(logger *slog.Logger) error {
	m, err := keymap.Load(t.Path, keymap.FormatBase)
	if err != nil {
		return err
	}
	events, err := m.Events(t.DeviceID, t.Text)
	if err != nil {
		return err
	}

	if t.Inject {
		return injectEvents(m, events, t.Delay, logger)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ev := range events {
		out := apitypes.Event{
			DeviceID:  ev.DeviceID,
			Time:      ev.Time,
			Action:    ev.Action.String(),
			KeyCode:   apitypes.KeyCodeValue(ev.KeyCode),
			MetaState: apitypes.MetaStateValue(ev.MetaState),
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
