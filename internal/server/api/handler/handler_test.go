package handler_test

import (
	"testing"

	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/api/handler"
	"github.com/virtkbd/keymapd/internal/server/layouts"
	apitest "github.com/virtkbd/keymapd/internal/testing"
)

const testLayout = `
type FULL

map key 30 A
map key 48 B

key A {
    label: 'A'
    base:  'a'
    shift: 'A'
}

key B {
    label: 'B'
    base:  'b'
    shift: 'B'
}
`

// startServer boots an API server with a single layout "test" and every
// layout route registered.
func startServer(t *testing.T) (addr string, store *layouts.Store, done func()) {
	t.Helper()
	store = apitest.NewLayoutStore(t, map[string]string{"test": testLayout})
	addr, done = apitest.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
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
	})
	return addr, store, done
}
