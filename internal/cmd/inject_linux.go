//go:build linux

package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bendahl/uinput"
	"github.com/virtkbd/keymapd/keymap"
)

func injectEvents(m *keymap.Map, events []keymap.KeyEvent, delay time.Duration, logger *slog.Logger) error {
	kb, err := uinput.CreateKeyboard("/dev/uinput", []byte("keymapd"))
	if err != nil {
		return fmt.Errorf("failed to create virtual keyboard: %w", err)
	}
	defer func() { _ = kb.Close() }()

	logger.Info("Injecting key events", "count", len(events))
	for _, ev := range events {
		scan, ok := m.ScanCodeForKey(ev.KeyCode)
		if !ok {
			return fmt.Errorf("layout has no scan code for key %s", ev.KeyCode)
		}
		if ev.Action == keymap.ActionDown {
			err = kb.KeyDown(int(scan))
		} else {
			err = kb.KeyUp(int(scan))
		}
		if err != nil {
			return fmt.Errorf("failed to inject %s for key %s: %w", ev.Action, ev.KeyCode, err)
		}
		time.Sleep(delay)
	}
	return nil
}
