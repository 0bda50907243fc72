package jsonrpc

// The codec is the single place raw text becomes structured messages and
// back. It is constructed once per process from the handler's declared
// scheme and is safe for concurrent use: the scheme is read-only after
// construction and encode buffers come from a shared pool.

import (
	"bytes"
	"encoding/json"

	"github.com/valyala/bytebufferpool"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

// Item is the outcome of decoding one batch element (or the sole object of a
// single-mode payload): either a valid message or a per-slot failure tagged
// with a best-effort identifier.
type Item struct {
	Msg *Request
	Err *errors.RpcError
	ID  json.RawMessage
}

// Valid reports whether the slot decoded into a well-formed message.
func (it Item) Valid() bool {
	return it.Err == nil && it.Msg != nil
}

// Envelope is the tagged single-vs-batch decode result. Single mode holds
// exactly one item; batch mode preserves input array order.
type Envelope struct {
	Batch bool
	Items []Item
}

// Serializer decodes request payloads and encodes outbound messages.
type Serializer interface {
	Decode(body []byte) (*Envelope, *errors.RpcError)
	Encode(resp *Response) ([]byte, error)
	EncodeBatch(resps []*Response) ([]byte, error)
}

// Codec implements Serializer against a handler scheme.
type Codec struct {
	scheme *scheme.Scheme
}

var _ Serializer = (*Codec)(nil)

func NewCodec(s *scheme.Scheme) *Codec {
	return &Codec{scheme: s}
}

// Decode parses a request payload into an Envelope. A nil envelope with a
// non-nil error means the payload as a whole was unusable and the caller
// should answer with that single error; per-slot failures inside a
// well-formed batch surface as invalid Items instead.
func (c *Codec) Decode(body []byte) (*Envelope, *errors.RpcError) {
	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return nil, errors.ErrInvalidRequest
	}

	if body[0] == '[' {
		var elements []json.RawMessage

		if err := json.Unmarshal(body, &elements); err != nil {
			return nil, errors.ErrParseError
		}

		if len(elements) == 0 {
			return nil, errors.ErrInvalidRequest
		}

		env := &Envelope{
			Batch: true,
			Items: make([]Item, 0, len(elements)),
		}

		for _, raw := range elements {
			env.Items = append(env.Items, c.decodeItem(raw))
		}

		return env, nil
	}

	if !json.Valid(body) {
		return nil, errors.ErrParseError
	}

	return &Envelope{Items: []Item{c.decodeItem(body)}}, nil
}

// decodeItem turns one raw element into a valid message or a tagged failure.
// The element is already known to be syntactically valid JSON.
func (c *Codec) decodeItem(raw json.RawMessage) Item {
	var req Request

	if err := json.Unmarshal(raw, &req); err != nil {
		// Valid JSON of the wrong shape, e.g. a bare number in a batch.
		return Item{Err: errors.ErrInvalidRequest, ID: probeID(raw)}
	}

	if req.JSONRPC != Version || req.Method == "" {
		return Item{Err: errors.ErrInvalidRequest, ID: probeID(raw)}
	}

	id := req.ID
	if len(id) == 0 {
		id = NoID
	}

	// Reserved methods bypass scheme validation; they are dropped later
	// without ever reaching the handler.
	if !req.IsInternal() {
		m, ok := c.scheme.Lookup(req.Method)
		if !ok {
			return Item{Err: errors.ErrMethodNotFound.WithMessagef("Method not found: %s", req.Method), ID: id}
		}
		if m.ParamsRequired && len(req.Params) == 0 {
			return Item{Err: errors.ErrInvalidParams.WithMessagef("Invalid params: %s requires params", req.Method), ID: id}
		}
	}

	return Item{Msg: &req, ID: id}
}

// probeID makes a best-effort attempt to recover an identifier from a
// malformed element so its error response can still be correlated.
func probeID(raw json.RawMessage) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal(raw, &probe); err != nil || len(probe.ID) == 0 {
		return NoID
	}

	return probe.ID
}

// Encode serializes a single outbound message.
func (c *Codec) Encode(resp *Response) ([]byte, error) {
	return encode(resp)
}

// EncodeBatch serializes a batch response. An empty list encodes as [] so the
// caller can still answer 200 with a content body.
func (c *Codec) EncodeBatch(resps []*Response) ([]byte, error) {
	if len(resps) == 0 {
		return []byte("[]"), nil
	}
	return encode(resps)
}

func encode(v any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}

	// Copy out of the pooled buffer, dropping the encoder's trailing newline.
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return append([]byte(nil), out...), nil
}
