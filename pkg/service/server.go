package service

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/hypervine/rpcbridge/pkg/bridge"
)

// Server hosts a bridge on a fiber app. The bridge itself stays a plain
// http.Handler so other routers can mount it directly; fiber is just the
// batteries-included surface used by the serve command.
type Server struct {
	app    *fiber.App
	bridge *bridge.Bridge
}

func NewServer(h bridge.Handler, opts ...bridge.Option) *Server {
	srv := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "RPC Bridge",
			ServerHeader: "RPC-Bridge-Server",
		}),
		bridge: bridge.New(h, opts...),
	}

	srv.app.Get("/health", func(ctx fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	// All methods route to the bridge; it owns the 405 semantics.
	srv.app.All("/rpc", adaptor.HTTPHandler(srv.bridge))

	return srv
}

// Bridge exposes the underlying http.Handler for hosts that bring their own
// mux.
func (srv *Server) Bridge() *bridge.Bridge {
	return srv.bridge
}

// Listen blocks serving the app on the given address.
func (srv *Server) Listen(addr string) error {
	return srv.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the app.
func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.app.ShutdownWithContext(ctx)
}
