package hello

import "github.com/janisto/hello-kube/internal/platform/timeutil"

// Data models the response payload for hello endpoints.
type Data struct {
	Message   string        `json:"message"   doc:"Greeting message"            example:"Hello, World!"`
	Timestamp timeutil.Time `json:"timestamp" doc:"Server time of the greeting"`
}
