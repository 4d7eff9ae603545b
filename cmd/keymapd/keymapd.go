package main

import (
	"os"
	"strings"

	"github.com/virtkbd/keymapd/internal/config"
	"github.com/virtkbd/keymapd/internal/configpaths"
	"github.com/virtkbd/keymapd/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("keymapd"),
		kong.Description("Keyboard layout server and .kcm toolbox"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var wireLogger log.WireLogger
	if cli.Log.WireFile != "" {
		f, err := os.OpenFile(cli.Log.WireFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open wire log file", "file", cli.Log.WireFile, "error", err)
			wireLogger = log.NewWire(nil)
		} else {
			wireLogger = log.NewWire(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		wireLogger = log.NewWire(os.Stdout)
	} else {
		wireLogger = log.NewWire(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(wireLogger, (*log.WireLogger)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("KEYMAPD_CONFIG"); v != "" {
		return v
	}
	return ""
}
