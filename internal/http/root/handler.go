// Package root serves the plain-text greeting at GET /.
package root

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/hello-kube/internal/greeting"
	applog "github.com/janisto/hello-kube/internal/platform/logging"
)

const contentType = "text/plain; charset=utf-8"

// Output carries the raw greeting. A []byte body is written as-is, bypassing content negotiation.
type Output struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// Register wires GET / into api.
func Register(api huma.API, g *greeting.Greeter) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Get the greeting",
		Description: "Returns the configured greeting as plain text.",
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting text",
				Content: map[string]*huma.MediaType{
					"text/plain": {Schema: &huma.Schema{Type: huma.TypeString, Examples: []any{greeting.Default}}},
				},
			},
		},
	}, func(ctx context.Context, _ *struct{}) (*Output, error) {
		applog.LogInfo(ctx, "root get")
		return &Output{ContentType: contentType, Body: []byte(g.Message())}, nil
	})
}
