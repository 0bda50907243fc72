package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

func testCodec() *Codec {
	s := scheme.New()
	s.Add(scheme.Method{Name: "echo"})
	s.Add(scheme.Method{Name: "sum", ParamsRequired: true})
	return NewCodec(s)
}

func TestDecodeSingleRequest(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":"2.0","id":1,"method":"echo","params":[1,2]}`))

	require.Nil(t, rpcErr)
	require.NotNil(t, env)
	assert.False(t, env.Batch)
	require.Len(t, env.Items, 1)

	item := env.Items[0]
	require.True(t, item.Valid())
	assert.Equal(t, "echo", item.Msg.Method)
	assert.Equal(t, "1", string(item.ID))
	assert.False(t, item.Msg.IsNotification())
}

func TestDecodeNotification(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":"2.0","method":"echo"}`))

	require.Nil(t, rpcErr)
	require.Len(t, env.Items, 1)
	require.True(t, env.Items[0].Valid())
	assert.True(t, env.Items[0].Msg.IsNotification())
	assert.Equal(t, string(NoID), string(env.Items[0].ID))
}

func TestDecodeMalformedPayload(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":`))

	assert.Nil(t, env)
	require.NotNil(t, rpcErr)
	assert.Equal(t, errors.ErrParseError.Code, rpcErr.Code)
}

func TestDecodeEmptyPayload(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte("  \n "))

	assert.Nil(t, env)
	require.NotNil(t, rpcErr)
	assert.Equal(t, errors.ErrInvalidRequest.Code, rpcErr.Code)
}

func TestDecodeEmptyBatch(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`[]`))

	assert.Nil(t, env)
	require.NotNil(t, rpcErr)
	assert.Equal(t, errors.ErrInvalidRequest.Code, rpcErr.Code)
}

func TestDecodeBatchIsolatesBadElements(t *testing.T) {
	body := `[
		{"jsonrpc":"2.0","id":1,"method":"echo"},
		42,
		{"jsonrpc":"1.0","id":3,"method":"echo"}
	]`
	env, rpcErr := testCodec().Decode([]byte(body))

	require.Nil(t, rpcErr)
	assert.True(t, env.Batch)
	require.Len(t, env.Items, 3)

	assert.True(t, env.Items[0].Valid())

	require.False(t, env.Items[1].Valid())
	assert.Equal(t, errors.ErrInvalidRequest.Code, env.Items[1].Err.Code)
	assert.Equal(t, string(NoID), string(env.Items[1].ID))

	// Best-effort id recovery for a structurally invalid element.
	require.False(t, env.Items[2].Valid())
	assert.Equal(t, "3", string(env.Items[2].ID))
}

func TestDecodeUnknownMethod(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":"2.0","id":9,"method":"nope"}`))

	require.Nil(t, rpcErr)
	item := env.Items[0]
	require.False(t, item.Valid())
	assert.Equal(t, errors.ErrMethodNotFound.Code, item.Err.Code)
	assert.Equal(t, "9", string(item.ID))
}

func TestDecodeMissingRequiredParams(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":"2.0","id":2,"method":"sum"}`))

	require.Nil(t, rpcErr)
	item := env.Items[0]
	require.False(t, item.Valid())
	assert.Equal(t, errors.ErrInvalidParams.Code, item.Err.Code)
}

func TestDecodeReservedMethodBypassesScheme(t *testing.T) {
	env, rpcErr := testCodec().Decode([]byte(`{"jsonrpc":"2.0","method":"rpc.ping"}`))

	require.Nil(t, rpcErr)
	require.True(t, env.Items[0].Valid())
	assert.True(t, env.Items[0].Msg.IsInternal())
}

func TestEncodeBatchEmpty(t *testing.T) {
	out, err := testCodec().EncodeBatch(nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestEncodeRoundTripPreservesID(t *testing.T) {
	c := testCodec()

	env, rpcErr := c.Decode([]byte(`{"jsonrpc":"2.0","id":"abc-123","method":"echo","params":{"x":1}}`))
	require.Nil(t, rpcErr)
	msg := env.Items[0].Msg

	out, err := c.Encode(NewResult(msg.ID, msg.Params))
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, `"abc-123"`, string(resp.ID))
	assert.Equal(t, Version, resp.JSONRPC)
	assert.Nil(t, resp.Error)
}

func TestErrorResponseAlwaysCarriesID(t *testing.T) {
	out, err := testCodec().Encode(NewError(nil, nil))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))

	id, ok := raw["id"]
	require.True(t, ok, "id member must be present on error responses")
	assert.Equal(t, "null", string(id))

	var resp Response
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, errors.ErrInternal.Code, resp.Error.Code)
}

func TestSameID(t *testing.T) {
	assert.True(t, SameID(json.RawMessage(`1`), json.RawMessage(`1`)))
	assert.True(t, SameID(nil, NoID))
	assert.False(t, SameID(json.RawMessage(`1`), json.RawMessage(`"1"`)))
}
