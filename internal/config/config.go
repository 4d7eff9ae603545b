// Package config defines the command line surface of keymapd.
package config

import "github.com/virtkbd/keymapd/internal/cmd"

// LogConfig holds the logging flags shared by all commands.
type LogConfig struct {
	Level    string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"KEYMAPD_LOG_LEVEL"`
	File     string `help:"Write logs to this file instead of stdout/stderr" env:"KEYMAPD_LOG_FILE"`
	WireFile string `help:"Write raw API wire traffic to this file" env:"KEYMAPD_LOG_WIRE_FILE"`
}

// CLI is the root kong command structure.
type CLI struct {
	Config string    `help:"Path to a configuration file (JSON, YAML or TOML)" env:"KEYMAPD_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Server    cmd.Server        `cmd:"" help:"Run the keymapd layout server"`
	Validate  cmd.Validate      `cmd:"" help:"Validate layout files"`
	Dump      cmd.Dump          `cmd:"" help:"Print a parsed layout or write its binary form"`
	Type      cmd.Type          `cmd:"" help:"Synthesize the key events that type a text string"`
	Ping      cmd.Ping          `cmd:"" help:"Check connectivity with a running server"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Manage configuration files"`
}
