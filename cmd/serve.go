package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hypervine/rpcbridge/pkg/bridge"
	"github.com/hypervine/rpcbridge/pkg/logging"
	"github.com/hypervine/rpcbridge/pkg/service"
)

var (
	portFlag int
	hostFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON-RPC bridge",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logging.Init(viper.GetString("log.level"), viper.GetString("log.file")); err != nil {
				return err
			}
			defer logging.Close()

			host := hostFlag
			if host == "" {
				host = viper.GetString("server.host")
			}
			port := portFlag
			if port == 0 {
				port = viper.GetInt("server.port")
			}

			var opts []bridge.Option
			if viper.GetString("server.dispatch") == "concurrent" {
				opts = append(opts, bridge.WithDispatchPolicy(bridge.DispatchConcurrent))
			}

			srv := service.NewServer(service.NewEchoHandler(), opts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				addr := fmt.Sprintf("%s:%d", host, port)
				log.Info("serving JSON-RPC bridge", "addr", addr)
				errCh <- srv.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().StringVarP(&hostFlag, "host", "H", "", "Host address to bind to (overrides config)")
}

var longServe = `
Serve the JSON-RPC bridge over HTTP with the builtin echo handler.

The bridge accepts POSTed JSON-RPC 2.0 payloads on /rpc, single or batched,
and answers per the protocol: notifications are never answered, batch
responses preserve request order among answered items, and malformed items
inside a batch fail individually without affecting their siblings.

Examples:
  # Serve on the default port from config
  rpcbridge serve

  # Serve on port 8080 with concurrent batch dispatch configured
  rpcbridge serve --port 8080
`
