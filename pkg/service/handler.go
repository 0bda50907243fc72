package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/jsonrpc"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

// HandlerFunc processes the raw params field and returns a result or a
// *errors.RpcError. Returning (nil, nil) is treated as null-result.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError)

// MethodHandler multiplexes JSON-RPC method names to handler functions and
// implements the bridge.Handler capability. Each registered method is also
// declared in the scheme so the codec can validate calls before dispatch.
type MethodHandler struct {
	mu      sync.RWMutex
	sch     *scheme.Scheme
	methods map[string]HandlerFunc
}

func NewMethodHandler() *MethodHandler {
	return &MethodHandler{
		sch:     scheme.New(),
		methods: make(map[string]HandlerFunc),
	}
}

// Register binds a method name to a handler function.
func (h *MethodHandler) Register(method string, fn HandlerFunc) {
	h.RegisterMethod(scheme.Method{Name: method}, fn)
}

// RegisterMethod binds a full method declaration, including param
// requirements, to a handler function.
func (h *MethodHandler) RegisterMethod(m scheme.Method, fn HandlerFunc) {
	h.mu.Lock()
	h.methods[m.Name] = fn
	h.mu.Unlock()
	h.sch.Add(m)
}

// Scheme returns the protocol configuration declared by registration. The
// codec consumes it at construction time.
func (h *MethodHandler) Scheme() *scheme.Scheme {
	return h.sch
}

// Handle answers one decoded message. Requests always get exactly one
// response carrying the request's identifier; handler panics surface as
// internal-error responses rather than taking the process down.
func (h *MethodHandler) Handle(ctx context.Context, req *jsonrpc.Request) (resp *jsonrpc.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", "method", req.Method, "panic", r)
			resp = jsonrpc.NewError(req.ID, errors.ErrInternal)
			err = nil
		}
	}()

	h.mu.RLock()
	fn, ok := h.methods[req.Method]
	h.mu.RUnlock()

	if !ok {
		return jsonrpc.NewError(req.ID, errors.ErrMethodNotFound.WithMessagef("Method not found: %s", req.Method)), nil
	}

	result, rpcErr := fn(ctx, req.Params)
	if rpcErr != nil {
		return jsonrpc.NewError(req.ID, rpcErr), nil
	}

	return jsonrpc.NewResult(req.ID, result), nil
}
