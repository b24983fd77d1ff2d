// Package tool holds the function tools and MCP server descriptors a session
// exposes to the model, and dispatches completed function calls to their
// handlers.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/voicewire/realtime-go/events"
)

var ErrUnknownTool = errors.New("tool: not registered")

// Handler runs one tool call with raw JSON arguments and returns raw JSON
// output. Typed handlers are boxed into this shape once, at registration.
type Handler func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Call is one completed function call as reported by the server.
type Call struct {
	CallID      string
	Name        string
	Arguments   json.RawMessage
	ResponseID  string
	ItemID      string
	OutputIndex int
}

// Result is the output of a dispatched call, ready to be sent back as a
// function_call_output item.
type Result struct {
	CallID string
	Output json.RawMessage
}

// Registry is a concurrency-safe collection of function tools and MCP
// descriptors.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	handlers map[string]Handler
	defs     map[string]events.Tool
	mcp      []events.Tool
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		defs:     make(map[string]events.Tool),
	}
}

// Register adds a typed function tool. The argument schema is derived from
// Args once; the handler is boxed so later dispatch never needs reflection.
// Registering a name twice replaces the earlier tool.
func Register[Args, Out any](r *Registry, name, description string, fn func(context.Context, Args) (Out, error)) error {
	if name == "" {
		return errors.New("tool: name is required")
	}
	if fn == nil {
		return fmt.Errorf("tool %q: handler is required", name)
	}
	schema, err := jsonschema.For[Args](&jsonschema.ForOptions{})
	if err != nil {
		return fmt.Errorf("tool %q: derive schema: %w", name, err)
	}
	params, err := schemaToMap(schema)
	if err != nil {
		return fmt.Errorf("tool %q: encode schema: %w", name, err)
	}
	handler := func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		var args Args
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("tool %q: decode arguments: %w", name, err)
			}
		}
		out, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("tool %q: encode output: %w", name, err)
		}
		return b, nil
	}
	r.add(events.FunctionTool(name, description, params), handler)
	return nil
}

// RegisterRaw adds a function tool with a hand-written schema and an untyped
// handler.
func (r *Registry) RegisterRaw(name, description string, parameters map[string]any, h Handler) error {
	if name == "" {
		return errors.New("tool: name is required")
	}
	if h == nil {
		return fmt.Errorf("tool %q: handler is required", name)
	}
	r.add(events.FunctionTool(name, description, parameters), h)
	return nil
}

// RegisterMCP adds a remote MCP server descriptor. MCP tools have no local
// handler; the server calls them directly.
func (r *Registry) RegisterMCP(cfg events.MCPToolConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mcp = append(r.mcp, events.MCPTool(cfg))
	return nil
}

func (r *Registry) add(def events.Tool, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
	r.handlers[def.Name] = h
}

// Has reports whether a local handler exists for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Tools returns the wire tool list: function tools in registration order,
// then MCP descriptors.
func (r *Registry) Tools() []events.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]events.Tool, 0, len(r.order)+len(r.mcp))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	out = append(out, r.mcp...)
	return out
}

// Dispatch runs the handler for call. An unregistered name yields
// ErrUnknownTool; handler and argument-decode failures come back as errors
// with an empty Result.
func (r *Registry) Dispatch(ctx context.Context, call Call) (Result, error) {
	r.mu.RLock()
	h, ok := r.handlers[call.Name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	out, err := h(ctx, call.Arguments)
	if err != nil {
		return Result{}, err
	}
	return Result{CallID: call.CallID, Output: out}, nil
}

func schemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
