package jsonrpc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hypervine/rpcbridge/pkg/bridge"
	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/jsonrpc"
	"github.com/hypervine/rpcbridge/pkg/service"
)

func TestClientCallRoundTrip(t *testing.T) {
	h := service.NewMethodHandler()
	h.Register("upper", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		var v string
		if err := json.Unmarshal(params, &v); err != nil {
			return nil, errors.ErrInvalidParams
		}
		return v + "!", nil
	})

	ts, errTS := newTestServer(bridge.New(h))
	if errTS != nil {
		t.Skip("network disabled in environment; skipping test")
	}
	defer ts.Close()

	client := &jsonrpc.Client{Endpoint: ts.URL}

	var out string
	if err := client.Call(context.Background(), "upper", "hello", &out); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if out != "hello!" {
		t.Fatalf("unexpected result: %s", out)
	}

	// Error path: unknown method is rejected by the codec.
	err := client.Call(context.Background(), "does.not.exist", nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestClientNotify(t *testing.T) {
	h := service.NewMethodHandler()
	called := make(chan struct{}, 1)
	h.Register("fire", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		called <- struct{}{}
		return "ignored", nil
	})

	ts, errTS := newTestServer(bridge.New(h))
	if errTS != nil {
		t.Skip("network disabled in environment; skipping test")
	}
	defer ts.Close()

	client := &jsonrpc.Client{Endpoint: ts.URL}
	if err := client.Notify(context.Background(), "fire", nil); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	select {
	case <-called:
	default:
		t.Fatal("handler was not invoked for the notification")
	}
}

// newTestServer wraps httptest.NewServer but converts the panic that is thrown
// when the environment forbids listening on sockets into a regular error so
// the caller can gracefully skip the test.
func newTestServer(h http.Handler) (*httptest.Server, error) {
	var srv *httptest.Server
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("listener not permitted: %v", r)
			}
		}()
		srv = httptest.NewServer(h)
	}()
	return srv, err
}
