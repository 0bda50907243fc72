package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/jsonrpc"
)

var (
	endpointFlag string
	notifyFlag   bool

	callCmd = &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Call a method on a running bridge",
		Long:  longCall,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := args[0]

			var params any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("params must be valid JSON: %w", err)
				}
			}

			client := &jsonrpc.Client{Endpoint: endpointFlag}

			if notifyFlag {
				return client.Notify(cmd.Context(), method, params)
			}

			// The bridge may still be coming up; retry the first connection.
			var result any
			err := errors.RetryWithBackoff(errors.DefaultRetryConfig(), func() error {
				return client.Call(cmd.Context(), method, params, &result)
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}

			log.Info("call succeeded", "method", method)
			fmt.Println(string(out))
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&endpointFlag, "endpoint", "e", "http://localhost:3210/rpc", "Bridge endpoint URL")
	callCmd.Flags().BoolVarP(&notifyFlag, "notify", "n", false, "Send as a notification (no response expected)")
}

var longCall = `
Call a JSON-RPC method on a running bridge and print the result.

Examples:
  # Echo a payload back
  rpcbridge call echo '{"hello":"world"}'

  # Fire-and-forget notification
  rpcbridge call --notify ping
`
