package service

import (
	"context"
	"encoding/json"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

// NewEchoHandler returns a fully working handler that echoes its input.
// Great for smoke tests and the default serve wiring.
func NewEchoHandler() *MethodHandler {
	h := NewMethodHandler()

	h.RegisterMethod(scheme.Method{Name: "echo", ParamsRequired: true}, func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return params, nil
	})

	h.Register("ping", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return "pong", nil
	})

	return h
}
