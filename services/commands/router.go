package commands

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"latchbot/appctx"
	"latchbot/clients"
	"latchbot/models"
)

// InvalidPayloadMessage is the error returned for webhook bodies that fail to decode
const InvalidPayloadMessage = "Invalid payload"

// HandlerFunc handles one slash command. A non-nil result is sent back to the
// backend verbatim; a nil result acknowledges the command with {"ok": true}.
type HandlerFunc func(ctx context.Context, cmd *CommandContext) (any, error)

// HandlerPanicError is reported when a handler panics instead of returning an error
type HandlerPanicError struct {
	Command string
	Value   any
	Stack   []byte
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// Router maps slash command names to handlers.
// Registration is expected to happen at startup, before Handle is called.
type Router struct {
	client   clients.LatchClient
	observer DispatchObserver

	mu             sync.RWMutex
	handlers       map[string]HandlerFunc
	defaultHandler HandlerFunc
}

type RouterOption func(*Router)

// WithObserver replaces the default logging observer
func WithObserver(observer DispatchObserver) RouterOption {
	return func(r *Router) {
		if observer != nil {
			r.observer = observer
		}
	}
}

func NewRouter(client clients.LatchClient, opts ...RouterOption) *Router {
	r := &Router{
		client:   client,
		observer: LogObserver{},
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeCommandName lower-cases a command name and strips surrounding spaces and a leading slash
func NormalizeCommandName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	return strings.ToLower(strings.TrimSpace(name))
}

// Register binds handler to a command name. Names are matched case-insensitively;
// registering the same name twice replaces the previous handler.
func (r *Router) Register(name string, handler HandlerFunc) {
	key := NormalizeCommandName(name)
	if key == "" {
		panic("command name cannot be empty")
	}
	if handler == nil {
		panic(fmt.Sprintf("nil handler for command %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key] = handler
}

// SetDefault registers the handler used when no command matches. Passing nil removes it.
func (r *Router) SetDefault(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = handler
}

// Commands returns the registered command names in alphabetical order
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle decodes a webhook body and dispatches it. It never panics and never returns an error:
// failures are reported as {"error": ...} envelopes.
func (r *Router) Handle(ctx context.Context, raw []byte) any {
	payload, err := models.ParseCommandPayload(raw)
	if err != nil {
		r.observer.InvalidPayload(ctx, err)
		return models.NewErrorResponse(InvalidPayloadMessage)
	}
	return r.Dispatch(ctx, payload)
}

// Dispatch routes an already decoded payload
func (r *Router) Dispatch(ctx context.Context, payload *models.CommandPayload) any {
	if payload == nil {
		r.observer.InvalidPayload(ctx, fmt.Errorf("nil command payload"))
		return models.NewErrorResponse(InvalidPayloadMessage)
	}

	ctx = appctx.SetCommandPayload(ctx, payload)

	handler := r.resolve(payload.Command)
	if handler == nil {
		r.observer.Unroutable(ctx, payload)
		return models.NewAckResponse()
	}

	started := time.Now()
	result, err := invoke(ctx, handler, newCommandContext(payload, r.client))
	if err != nil {
		r.observer.HandlerFailed(ctx, payload, err)
		return models.NewErrorResponse(err.Error())
	}
	r.observer.Handled(ctx, payload, time.Since(started))

	if isNil(result) {
		return models.NewAckResponse()
	}
	return result
}

func (r *Router) resolve(command string) HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handler, ok := r.handlers[NormalizeCommandName(command)]; ok {
		return handler
	}
	return r.defaultHandler
}

func invoke(ctx context.Context, handler HandlerFunc, cmd *CommandContext) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &HandlerPanicError{Command: cmd.Command(), Value: rec, Stack: debug.Stack()}
		}
	}()
	return handler(ctx, cmd)
}

// isNil catches typed nils such as a (*T)(nil) returned through the any result
func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
