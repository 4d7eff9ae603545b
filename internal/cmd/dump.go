package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/virtkbd/keymapd/keymap"
)

// Dump prints the parsed contents of a layout file, or writes its compiled
// binary form for embedding.
type Dump struct {
	Path    string `arg:"" name:"path" help:"Layout file (.kcm) to dump" type:"existingfile"`
	Format  string `help:"Output format" enum:"text,json,binary" default:"text"`
	Output  string `help:"Destination file (defaults to stdout)"`
	Overlay bool   `help:"Parse as an overlay layout"`
}

func (d *Dump) Run() error {
	format := keymap.FormatBase
	if d.Overlay {
		format = keymap.FormatOverlay
	}
	m, err := keymap.Load(d.Path, format)
	if err != nil {
		return err
	}

	out := os.Stdout
	if d.Output != "" {
		f, err := os.Create(d.Output)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch d.Format {
	case "binary":
		return m.WriteTo(out)
	case "json":
		return dumpJSON(out, m)
	default:
		return dumpText(out, m)
	}
}

type behaviorDump struct {
	MetaState string `json:"metaState"`
	Character string `json:"character,omitempty"`
	Fallback  string `json:"fallback,omitempty"`
	Replace   string `json:"replace,omitempty"`
}

type keyDump struct {
	Label     string         `json:"label,omitempty"`
	Number    string         `json:"number,omitempty"`
	Behaviors []behaviorDump `json:"behaviors"`
}

func dumpJSON(out *os.File, m *keymap.Map) error {
	root := struct {
		Type string             `json:"type"`
		Keys map[string]keyDump `json:"keys"`
	}{Type: m.KeyboardType().String(), Keys: map[string]keyDump{}}

	for _, code := range m.KeyCodes() {
		key, _ := m.Key(code)
		kd := keyDump{}
		if key.Label != 0 {
			kd.Label = string(key.Label)
		}
		if key.Number != 0 {
			kd.Number = string(key.Number)
		}
		for _, b := range key.Behaviors {
			bd := behaviorDump{MetaState: b.MetaState.String()}
			if b.Character != 0 {
				bd.Character = string(b.Character)
			}
			if b.FallbackKeyCode != keymap.KeyCodeNone {
				bd.Fallback = b.FallbackKeyCode.String()
			}
			if b.ReplacementKeyCode != keymap.KeyCodeNone {
				bd.Replace = b.ReplacementKeyCode.String()
			}
			kd.Behaviors = append(kd.Behaviors, bd)
		}
		root.Keys[code.String()] = kd
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

func dumpText(out *os.File, m *keymap.Map) error {
	fmt.Fprintf(out, "type %s\n", m.KeyboardType())
	for _, code := range m.KeyCodes() {
		key, _ := m.Key(code)
		fmt.Fprintf(out, "\nkey %s {\n", code)
		if key.Label != 0 {
			fmt.Fprintf(out, "    label:    %q\n", key.Label)
		}
		if key.Number != 0 {
			fmt.Fprintf(out, "    number:   %q\n", key.Number)
		}
		for _, b := range key.Behaviors {
			state := b.MetaState.String()
			switch {
			case b.FallbackKeyCode != keymap.KeyCodeNone:
				fmt.Fprintf(out, "    %s: fallback %s\n", state, b.FallbackKeyCode)
			case b.ReplacementKeyCode != keymap.KeyCodeNone:
				fmt.Fprintf(out, "    %s: replace %s\n", state, b.ReplacementKeyCode)
			case b.Character != 0:
				fmt.Fprintf(out, "    %s: %q\n", state, b.Character)
			default:
				fmt.Fprintf(out, "    %s: none\n", state)
			}
		}
		fmt.Fprintf(out, "}\n")
	}
	return nil
}
