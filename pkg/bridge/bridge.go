package bridge

// Bridge adapts one HTTP request/response cycle into JSON-RPC 2.0 message
// semantics. Processing is a strict pipeline: transport validation, codec
// decode, per-item dispatch against the Handler, response encoding. Nothing
// here calls back upstream and no state survives the request.

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/hypervine/rpcbridge/pkg/errors"
	"github.com/hypervine/rpcbridge/pkg/jsonrpc"
	"github.com/hypervine/rpcbridge/pkg/scheme"
)

const mediaTypeJSON = "application/json"

// Handler is the business-logic capability the bridge dispatches to. Handle
// must return exactly one response whose identifier matches the request's
// identifier whenever the request carried one; the bridge treats violations
// as fatal programming errors, never as client-visible JSON-RPC errors.
type Handler interface {
	Scheme() *scheme.Scheme
	Handle(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)
}

// DispatchPolicy selects how batch items are handed to the Handler.
type DispatchPolicy int

const (
	// DispatchSequential calls the handler one item at a time in array
	// order. This is the default contract.
	DispatchSequential DispatchPolicy = iota
	// DispatchConcurrent fans batch items out to goroutines. Output order
	// still matches input slot order among non-dropped items.
	DispatchConcurrent
)

// FatalFunc receives handler-contract violations and body-read failures.
// The default writes an empty 500; hosts can substitute their own mapping.
type FatalFunc func(w http.ResponseWriter, r *http.Request, err error)

// Bridge is an http.Handler translating POSTed JSON-RPC payloads into
// Handler calls. Safe for concurrent use: the codec and scheme are read-only
// after construction.
type Bridge struct {
	handler Handler
	codec   jsonrpc.Serializer
	policy  DispatchPolicy
	fatal   FatalFunc
}

type Option func(*Bridge)

// WithDispatchPolicy overrides the default sequential batch dispatch.
func WithDispatchPolicy(p DispatchPolicy) Option {
	return func(b *Bridge) { b.policy = p }
}

// WithFatalHandler overrides how contract violations surface to the host.
func WithFatalHandler(f FatalFunc) Option {
	return func(b *Bridge) { b.fatal = f }
}

// WithSerializer substitutes the codec. Mainly useful in tests.
func WithSerializer(s jsonrpc.Serializer) Option {
	return func(b *Bridge) { b.codec = s }
}

func New(h Handler, opts ...Option) *Bridge {
	b := &Bridge{
		handler: h,
		codec:   jsonrpc.NewCodec(h.Scheme()),
		policy:  DispatchSequential,
		fatal:   defaultFatal,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

func defaultFatal(w http.ResponseWriter, r *http.Request, err error) {
	log.Error("fatal dispatch error", "error", err, "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusInternalServerError)
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, status, err := b.validateTransport(r)
	if status != 0 {
		log.Debug("rejecting request at transport layer", "status", status, "remote", r.RemoteAddr)
		if status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", http.MethodPost)
		}
		w.WriteHeader(status)
		return
	}
	if err != nil {
		// Body read failed mid-request; nothing partial goes out.
		b.fatal(w, r, err)
		return
	}

	env, rpcErr := b.codec.Decode(body)
	if rpcErr != nil {
		b.respondSingle(w, r, jsonrpc.NewError(jsonrpc.NoID, rpcErr))
		return
	}

	if env.Batch {
		b.respondBatch(w, r, env.Items)
		return
	}

	resp, err := b.dispatchItem(r.Context(), env.Items[0])
	if err != nil {
		b.fatal(w, r, err)
		return
	}

	if resp == nil {
		// Lone notification: headers only, no content.
		w.Header().Set("Content-Type", mediaTypeJSON+"; charset=utf-8")
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	b.respondSingle(w, r, resp)
}

// validateTransport runs the ordered precondition checks. A non-zero status
// means the request was rejected before any JSON-RPC parsing; a non-nil
// error means the read itself failed.
func (b *Bridge) validateTransport(r *http.Request) ([]byte, int, error) {
	if !strings.EqualFold(r.Method, http.MethodPost) {
		return nil, http.StatusMethodNotAllowed, nil
	}

	if !mediaTypeIs(r.Header.Get("Content-Type"), mediaTypeJSON) {
		return nil, http.StatusUnsupportedMediaType, nil
	}

	if !acceptsMediaType(r.Header.Get("Accept"), mediaTypeJSON) {
		return nil, http.StatusNotAcceptable, nil
	}

	// ContentLength is -1 for chunked requests; a request with no body and
	// no Content-Length header surfaces as 0 with an empty header map entry.
	if r.ContentLength < 0 || (r.ContentLength == 0 && r.Header.Get("Content-Length") == "") {
		return nil, http.StatusLengthRequired, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, 0, err
	}

	// The length check is textual, matching how the body is decoded: the
	// UTF-8 character count must equal the declared Content-Length.
	if int64(utf8.RuneCount(body)) != r.ContentLength {
		return nil, http.StatusBadRequest, nil
	}

	return body, 0, nil
}

// mediaTypeIs compares the base media type of a header value, ignoring
// parameters such as charset.
func mediaTypeIs(value, want string) bool {
	if value == "" {
		return false
	}

	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}

	return strings.EqualFold(mt, want)
}

// acceptsMediaType scans a comma-separated Accept header for the wanted base
// media type.
func acceptsMediaType(value, want string) bool {
	if value == "" {
		return false
	}

	for _, part := range strings.Split(value, ",") {
		if mediaTypeIs(strings.TrimSpace(part), want) {
			return true
		}
	}

	return false
}

// dispatchItem applies the per-item algorithm: invalid slots become error
// responses, reserved internal messages and notifications produce nothing,
// everything else must be answered by the handler with a matching id.
func (b *Bridge) dispatchItem(ctx context.Context, item jsonrpc.Item) (*jsonrpc.Response, error) {
	if !item.Valid() {
		return jsonrpc.NewError(item.ID, item.Err), nil
	}

	msg := item.Msg

	if msg.IsInternal() {
		log.Debug("dropping reserved internal message", "method", msg.Method)
		return nil, nil
	}

	resp, err := b.handler.Handle(ctx, msg)
	if err != nil {
		return nil, errors.ErrInternal.WithMessagef("handler failed for %q (id %s): %v", msg.Method, item.ID, err)
	}

	if msg.IsNotification() {
		// Whatever the handler computed is suppressed by protocol contract.
		return nil, nil
	}

	if resp == nil {
		return nil, errors.ErrInternal.WithMessagef("handler returned no response for request id %s", item.ID)
	}

	if !jsonrpc.SameID(msg.ID, resp.ID) {
		return nil, errors.ErrInternal.WithMessagef("handler response id %s does not match request id %s", resp.ID, msg.ID)
	}

	return resp, nil
}

// respondBatch runs the per-item algorithm across the batch and writes the
// collected responses. One slot's fatal error does not stop sibling
// dispatch, but it does make the overall request fail after all slots ran.
func (b *Bridge) respondBatch(w http.ResponseWriter, r *http.Request, items []jsonrpc.Item) {
	results, err := b.dispatchBatch(r.Context(), items)
	if err != nil {
		b.fatal(w, r, err)
		return
	}

	payload, encErr := b.codec.EncodeBatch(results)
	if encErr != nil {
		b.fatal(w, r, encErr)
		return
	}

	writeJSON(w, payload)
}

func (b *Bridge) dispatchBatch(ctx context.Context, items []jsonrpc.Item) ([]*jsonrpc.Response, error) {
	slots := make([]*jsonrpc.Response, len(items))
	errs := make([]error, len(items))

	if b.policy == DispatchConcurrent {
		var wg sync.WaitGroup
		for i, item := range items {
			wg.Add(1)
			go func(i int, item jsonrpc.Item) {
				defer wg.Done()
				slots[i], errs[i] = b.dispatchItem(ctx, item)
			}(i, item)
		}
		wg.Wait()
	} else {
		for i, item := range items {
			slots[i], errs[i] = b.dispatchItem(ctx, item)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Dropped slots (notifications, internal messages) leave no gap in the
	// response array; order follows the input slots that produced output.
	results := make([]*jsonrpc.Response, 0, len(items))
	for _, resp := range slots {
		if resp != nil {
			results = append(results, resp)
		}
	}

	return results, nil
}

func (b *Bridge) respondSingle(w http.ResponseWriter, r *http.Request, resp *jsonrpc.Response) {
	payload, err := b.codec.Encode(resp)
	if err != nil {
		b.fatal(w, r, err)
		return
	}

	writeJSON(w, payload)
}

// writeJSON sets the response headers and writes the body in one pass.
func writeJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", mediaTypeJSON+"; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
