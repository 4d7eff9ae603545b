package api

// ServerName and ServerVersion identify this server in ping responses.
const (
	ServerName    = "keymapd"
	ServerVersion = "0.1.0"
)

// ServerConfig represents the server subcommand configuration.
type ServerConfig struct {
	Addr        string `help:"API server listen address" default:":4712" env:"KEYMAPD_API_ADDR"`
	Password    string `kong:"-"`
	RequireAuth bool   `help:"Reject clients that do not authenticate" default:"true" env:"KEYMAPD_API_REQUIRE_AUTH"`
}
