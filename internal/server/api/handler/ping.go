package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/virtkbd/keymapd/apitypes"
	"github.com/virtkbd/keymapd/internal/server/api"
)

// Ping returns a handler that reports server identity and version.
func Ping() api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: api.ServerName, Version: api.ServerVersion})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
