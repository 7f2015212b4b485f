package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/inspirehep-mcp/auth"
	"github.com/jonwraymond/inspirehep-mcp/observe"
)

// Handler runs one tool call. A string result is returned as-is; any other
// result is rendered as indented JSON.
type Handler func(ctx context.Context, args Args) (any, error)

// Property describes one input argument.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
	Minimum     *int     `json:"minimum,omitempty"`
	Maximum     *int     `json:"maximum,omitempty"`
}

// Schema is a tool's JSON input schema.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Tool is a named, described operation.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema Schema  `json:"inputSchema"`
	Handler     Handler `json:"-"`
}

// Result is the rendered outcome of a tool call.
type Result struct {
	Text    string
	IsError bool
}

// Registry holds tools in registration order.
//
// Contract:
// - Concurrency: safe for concurrent use; Register may race with Call.
// - Errors: Call returns an error only for unknown tools and malformed
// arguments. Handler failures are reported through Result.IsError.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	exec   observe.ExecuteFunc
	logger observe.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMiddleware instruments every call with the observe middleware.
func WithMiddleware(mw *observe.Middleware) RegistryOption {
	return func(r *Registry) {
		if mw != nil {
			r.exec = mw.Wrap(r.exec)
		}
	}
}

// WithLogger sets the logger for registry events.
func WithLogger(l observe.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: observe.NopLogger(),
	}
	r.exec = r.dispatch
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds t. Names must be unique.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" || t.Handler == nil {
		return fmt.Errorf("%w: %q", ErrInvalidTool, t.Name)
	}
	if t.InputSchema.Type == "" {
		t.InputSchema.Type = "object"
	}
	if t.InputSchema.Properties == nil {
		t.InputSchema.Properties = map[string]Property{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	r.logger.Debug(context.Background(), "tool registered", observe.Field{Key: "tool", Value: t.Name})
	return nil
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Call runs the tool name with raw JSON arguments. Empty or null arguments
// are treated as an empty object.
func (r *Registry) Call(ctx context.Context, name string, raw json.RawMessage) (Result, error) {
	if _, ok := r.Lookup(name); !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	args := Args{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &args); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}

	meta := observe.ToolMeta{Name: name, Principal: auth.PrincipalFromContext(ctx)}
	out, err := r.exec(ctx, meta, args)
	if err != nil {
		return errorResult(err), nil
	}
	text, err := render(out)
	if err != nil {
		return errorResult(err), nil
	}
	return Result{Text: text}, nil
}

func (r *Registry) dispatch(ctx context.Context, meta observe.ToolMeta, input any) (any, error) {
	t, ok := r.Lookup(meta.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, meta.Name)
	}
	args, _ := input.(Args)
	return t.Handler(ctx, args)
}

func render(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("tools: render result: %w", err)
	}
	return string(b), nil
}

func errorResult(err error) Result {
	msg := err.Error()
	var ia *InvalidArgumentError
	if errors.As(err, &ia) {
		msg = ia.Message
	}
	b, _ := json.Marshal(map[string]string{"error": msg})
	return Result{Text: string(b), IsError: true}
}

func intp(n int) *int { return &n }
