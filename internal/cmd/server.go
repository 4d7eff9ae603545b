package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/virtkbd/keymapd/internal/configpaths"
	"github.com/virtkbd/keymapd/internal/log"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/api/auth"
	"github.com/virtkbd/keymapd/internal/server/api/handler"
	"github.com/virtkbd/keymapd/internal/server/layouts"
)

const keyFileName = "keymapd.key.txt"

type Server struct {
	ApiServerConfig api.ServerConfig `embed:"" prefix:"api."`
	LayoutDir       string           `help:"Directory holding .kcm layout files" env:"KEYMAPD_LAYOUT_DIR"`
	Watch           bool             `help:"Reload layouts when files change on disk" default:"true" env:"KEYMAPD_WATCH"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, wireLogger log.WireLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, wireLogger)
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, wireLogger log.WireLogger) error {
	layoutDir := s.LayoutDir
	if layoutDir == "" {
		var err error
		layoutDir, err = configpaths.DefaultLayoutDir()
		if err != nil {
			return fmt.Errorf("failed to resolve layout directory: %w", err)
		}
	}
	if err := os.MkdirAll(layoutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create layout directory: %w", err)
	}

	logger.Info("Starting keymapd layout server", "addr", s.ApiServerConfig.Addr, "layoutDir", layoutDir)

	if s.ApiServerConfig.RequireAuth {
		if err := s.loadOrGenerateKey(logger); err != nil {
			return err
		}
	}

	store, err := layouts.Open(layoutDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open layout store: %w", err)
	}
	if len(store.Names()) == 0 {
		logger.Warn("No layouts loaded", "dir", layoutDir)
		logger.Warn("Place .kcm files in the layout directory to make them available")
	}
	if s.Watch {
		if err := store.Watch(); err != nil {
			return fmt.Errorf("failed to watch layout directory: %w", err)
		}
	}
	defer func() { _ = store.Close() }()

	if s.ApiServerConfig.Addr == "" {
		return fmt.Errorf("API server address must be set (default :4712)")
	}

	apiSrv := api.New(s.ApiServerConfig.Addr, s.ApiServerConfig, logger, wireLogger)
	r := apiSrv.Router()
	r.Register("ping", handler.Ping())
	r.Register("layout/list", handler.LayoutList(store))
	r.Register("layout/{name}/info", handler.LayoutInfo(store))
	r.Register("layout/{name}/char", handler.LayoutChar(store))
	r.Register("layout/{name}/label", handler.LayoutLabel(store))
	r.Register("layout/{name}/mapkey", handler.LayoutMapKey(store))
	r.Register("layout/{name}/remap", handler.LayoutRemap(store))
	r.Register("layout/{name}/events", handler.LayoutEvents(store))
	r.Register("layout/{name}/combine", handler.LayoutCombine(store))
	r.Register("layout/{name}/reset", handler.LayoutReset(store))

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		return err
	}

	<-ctx.Done()
	apiSrv.Close()
	return nil
}

func (s *Server) loadOrGenerateKey(logger *slog.Logger) error {
	if s.ApiServerConfig.Password != "" {
		return nil
	}
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := path.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		s.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
		return nil
	}
	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir for key file: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	s.ApiServerConfig.Password = newPwd
	logger.Info("Generated API server password", "path", keyFilePath)
	logger.Info("-------------------------------------")
	logger.Info("Your keymapd API server password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return nil
}
