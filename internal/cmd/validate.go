package cmd

import (
	"fmt"
	"log/slog"

	"github.com/virtkbd/keymapd/keymap"
)

// Validate parses layout files and reports any syntax or semantic errors.
type Validate struct {
	Paths   []string `arg:"" name:"path" help:"Layout files (.kcm) to validate" type:"existingfile"`
	Overlay bool     `help:"Parse as overlay layouts (no type declaration)"`
}

func (v *Validate) Run(logger *slog.Logger) error {
	format := keymap.FormatBase
	if v.Overlay {
		format = keymap.FormatOverlay
	}

	failed := 0
	for _, path := range v.Paths {
		m, err := keymap.Load(path, format)
		if err != nil {
			failed++
			logger.Error("Layout is invalid", "file", path, "error", err)
			continue
		}
		logger.Info("Layout is valid", "file", path, "type", m.KeyboardType().String(), "keys", len(m.KeyCodes()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d layout(s) failed validation", failed, len(v.Paths))
	}
	return nil
}
