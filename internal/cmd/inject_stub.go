//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
	"time"

	"github.com/virtkbd/keymapd/keymap"
)

func injectEvents(_ *keymap.Map, _ []keymap.KeyEvent, _ time.Duration, _ *slog.Logger) error {
	return errors.New("event injection requires uinput and is only available on Linux")
}
