package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/virtkbd/keymapd/apiclient"
)

// Ping checks connectivity with a running keymapd server.
type Ping struct {
	Addr     string `help:"Server address" default:"127.0.0.1:4712" env:"KEYMAPD_ADDR"`
	Password string `help:"API password (prompted for when omitted)" env:"KEYMAPD_PASSWORD"`
}

func (p *Ping) Run(logger *slog.Logger) error {
	if p.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password (leave empty for none): ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		p.Password = strings.TrimSpace(string(b))
	}

	c := apiclient.NewWithPassword(p.Addr, p.Password)
	resp, err := c.Ping()
	if err != nil {
		return err
	}
	logger.Info("Server is up", "addr", p.Addr, "server", resp.Server, "version", resp.Version)
	return nil
}
