// Package hello serves the structured greeting API under /v1.
package hello

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/hello-kube/internal/greeting"
	applog "github.com/janisto/hello-kube/internal/platform/logging"
	"github.com/janisto/hello-kube/internal/platform/timeutil"
)

type handler struct {
	greeter *greeting.Greeter
	now     func() time.Time
}

// Register wires hello routes into api.
func Register(api huma.API, g *greeting.Greeter) {
	register(api, &handler{greeter: g, now: time.Now})
}

func register(api huma.API, h *handler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hello",
		Method:      http.MethodGet,
		Path:        "/hello",
		Summary:     "Get the greeting",
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID:   "create-hello",
		Method:        http.MethodPost,
		Path:          "/hello",
		Summary:       "Create a personalized greeting",
		DefaultStatus: http.StatusCreated,
	}, h.create)
}

func (h *handler) get(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogInfo(ctx, "hello get")
	return &GetOutput{Body: h.data(h.greeter.Message())}, nil
}

func (h *handler) create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	applog.LogInfo(ctx, "hello post", zap.String("name", input.Body.Name))
	return &CreateOutput{Body: h.data(h.greeter.Personalize(input.Body.Name))}, nil
}

func (h *handler) data(message string) Data {
	return Data{Message: message, Timestamp: timeutil.NewTime(h.now().UTC())}
}
