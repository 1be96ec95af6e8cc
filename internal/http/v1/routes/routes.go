// Package routes mounts the versioned JSON/CBOR API.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/hello-kube/internal/greeting"
	"github.com/janisto/hello-kube/internal/http/v1/hello"
)

// Prefix is the path every v1 operation is served under.
const Prefix = "/v1"

// Register wires all v1 routes into api under Prefix.
func Register(api huma.API, g *greeting.Greeter) {
	v1 := huma.NewGroup(api, Prefix)
	hello.Register(v1, g)
}
