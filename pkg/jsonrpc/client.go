package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/hypervine/rpcbridge/pkg/errors"
)

// Client is a minimal wrapper around http.Client to perform JSON-RPC calls
// against a bridge endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// Call performs a request/response round trip. The result field of the
// response is unmarshaled into result when non-nil. The response identifier
// must match the request identifier; a mismatch is an error because the
// bridge guarantees identity preservation.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	id := json.RawMessage(fmt.Sprintf("%q", uuid.NewString()))

	payload := Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
	}

	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		payload.Params = b
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if !SameID(id, rpcResp.ID) {
		return errors.ErrInternal.WithMessagef("response id %s does not match request id %s", rpcResp.ID, id)
	}

	if result != nil {
		b, err := json.Marshal(rpcResp.Result)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(b, result); err != nil {
			return err
		}
	}

	return nil
}

// Notify sends a fire-and-forget notification. The bridge answers 204 with no
// body; any other status is an error.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	payload := Request{
		JSONRPC: Version,
		Method:  method,
	}

	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		payload.Params = b
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status for notification: %s", resp.Status)
	}

	return nil
}

func (c *Client) post(ctx context.Context, payload Request) (*http.Response, error) {
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	return c.HTTP.Do(httpReq)
}
