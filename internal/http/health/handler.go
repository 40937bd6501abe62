// Package health serves the liveness probe.
package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// AwakeMessage is the fixed liveness reply.
const AwakeMessage = "Server is awake!"

// PingOutput is a plain-text liveness reply.
type PingOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte `contentType:"text/plain"`
}

// Register registers GET /ping.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Liveness probe",
		Description: "Reports that the server process is up. Does not touch storage.",
		Tags:        []string{"Health"},
	}, func(_ context.Context, _ *struct{}) (*PingOutput, error) {
		return &PingOutput{
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(AwakeMessage),
		}, nil
	})
}
