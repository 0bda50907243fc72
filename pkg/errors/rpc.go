package errors

import "fmt"

/*
RpcError represents a JSON-RPC error object carried inside a response.
*/
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for RpcError.
*/
func (e *RpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Convenience errors (JSON-RPC reserved codes -32700 .. -32000)
// Application specific codes should use other ranges.
var (
	ErrParseError     = &RpcError{Code: -32700, Message: "Parse error"}
	ErrInvalidRequest = &RpcError{Code: -32600, Message: "Invalid Request"}
	ErrMethodNotFound = &RpcError{Code: -32601, Message: "Method not found"}
	ErrInvalidParams  = &RpcError{Code: -32602, Message: "Invalid params"}
	ErrInternal       = &RpcError{Code: -32603, Message: "Internal error"}
)

// WithMessagef creates a *copy* of an RpcError with a formatted message.
// It does not modify the original error variable.
func (e *RpcError) WithMessagef(format string, args ...any) *RpcError {
	newErr := *e // shallow copy so the package vars stay pristine
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// WithData creates a copy of an RpcError carrying additional data.
func (e *RpcError) WithData(data any) *RpcError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// Category classifies a decode-time or dispatch-time failure. Each category
// maps to exactly one reserved JSON-RPC error code.
type Category int

const (
	CategoryParsing Category = iota
	CategoryInvalidMessage
	CategoryInvalidMethod
	CategoryInvalidParams
	CategoryOther
)

var categoryErrors = map[Category]*RpcError{
	CategoryParsing:        ErrParseError,
	CategoryInvalidMessage: ErrInvalidRequest,
	CategoryInvalidMethod:  ErrMethodNotFound,
	CategoryInvalidParams:  ErrInvalidParams,
	CategoryOther:          ErrInternal,
}

// Rpc returns the canonical RpcError for the category.
func (c Category) Rpc() *RpcError {
	if e, ok := categoryErrors[c]; ok {
		return e
	}
	return ErrInternal
}

// Code returns the JSON-RPC numeric code for the category.
func (c Category) Code() int {
	return c.Rpc().Code
}

func (c Category) String() string {
	switch c {
	case CategoryParsing:
		return "parsing"
	case CategoryInvalidMessage:
		return "invalid-message"
	case CategoryInvalidMethod:
		return "invalid-method"
	case CategoryInvalidParams:
		return "invalid-params"
	}
	return "other"
}

// CategoryOf maps a reserved-code RpcError back onto its Category. Errors
// outside the reserved table classify as CategoryOther.
func CategoryOf(e *RpcError) Category {
	if e == nil {
		return CategoryOther
	}
	switch e.Code {
	case ErrParseError.Code:
		return CategoryParsing
	case ErrInvalidRequest.Code:
		return CategoryInvalidMessage
	case ErrMethodNotFound.Code:
		return CategoryInvalidMethod
	case ErrInvalidParams.Code:
		return CategoryInvalidParams
	}
	return CategoryOther
}
