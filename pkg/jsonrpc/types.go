package jsonrpc

import (
	"bytes"
	"encoding/json"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

// Version is the only protocol revision this package speaks.
const Version = "2.0"

// NoID is the explicit sentinel used when a message carried no identifier or
// the identifier could not be recovered. On the wire it encodes as null.
var NoID = json.RawMessage("null")

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"` // accepts string | number; absent for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response. A literal
// null id counts as absent.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, NoID)
}

// IsInternal reports whether the method lives in the reserved rpc.* namespace.
func (r *Request) IsInternal() bool {
	return scheme.Reserved(r.Method)
}

// Response is the outbound message shape: exactly one of Result or Error is
// populated. The id member is always emitted, as null when unrecoverable.
type Response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *errors.RpcError `json:"error,omitempty"`
}

// NewResult builds a success response bound to the given identifier.
func NewResult(id json.RawMessage, result any) *Response {
	if len(id) == 0 {
		id = NoID
	}
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}

// NewError builds an error response. A nil error falls back to the internal
// error code so Code/Message are always populated.
func NewError(id json.RawMessage, e *errors.RpcError) *Response {
	if e == nil {
		e = errors.ErrInternal
	}
	if len(id) == 0 {
		id = NoID
	}
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   e,
	}
}

// SameID compares two raw identifiers for wire-level equality, treating
// absent and null as the same value.
func SameID(a, b json.RawMessage) bool {
	if len(a) == 0 {
		a = NoID
	}
	if len(b) == 0 {
		b = NoID
	}
	return bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b))
}
