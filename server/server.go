package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/jonwraymond/inspirehep-mcp/auth"
	"github.com/jonwraymond/inspirehep-mcp/observe"
	"github.com/jonwraymond/inspirehep-mcp/tools"
)

// DefaultName is the server name reported to clients.
const DefaultName = "inspirehep"

// Server dispatches MCP requests to a tool registry.
//
// Contract:
// - Concurrency: safe for concurrent use; messages may be handled in parallel.
// - Errors: HandleMessage never fails; every problem becomes a JSON-RPC error.
type Server struct {
	registry     *tools.Registry
	authz        auth.Authorizer
	logger       observe.Logger
	info         Implementation
	instructions string
	initialized  atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithAuthorizer checks every tools/call and filters tools/list for callers
// whose identity is in the request context.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(s *Server) { s.authz = a }
}

// WithLogger sets the protocol logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.info.Version = v }
}

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(text string) Option {
	return func(s *Server) { s.instructions = text }
}

// New creates a Server over reg.
func New(reg *tools.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   observe.NopLogger(),
		info:     Implementation{Name: DefaultName, Version: "0.1.0"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialized reports whether a client has sent notifications/initialized.
func (s *Server) Initialized() bool {
	return s.initialized.Load()
}

// HandleMessage processes one JSON-RPC message or batch and returns the
// encoded reply, or nil when nothing must be sent back.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return s.handleBatch(ctx, data)
	}

	resp := s.handleRaw(ctx, data)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

func (s *Server) handleBatch(ctx context.Context, data []byte) []byte {
	var batch []json.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		return encode(errorResponse(nil, CodeParseError, "Parse error"))
	}
	if len(batch) == 0 {
		return encode(errorResponse(nil, CodeInvalidRequest, "Invalid Request: empty batch"))
	}

	out := make([]*Response, 0, len(batch))
	for _, msg := range batch {
		if resp := s.handleRaw(ctx, msg); resp != nil {
			out = append(out, resp)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return encode(out)
}

func (s *Server) handleRaw(ctx context.Context, data []byte) (resp *Response) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, CodeParseError, "Parse error")
	}
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, CodeInvalidRequest, "Invalid Request")
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "request handler panicked",
				observe.Field{Key: "method", Value: req.Method},
				observe.Field{Key: "panic", Value: fmt.Sprint(p)},
			)
			if req.IsNotification() {
				resp = nil
				return
			}
			resp = errorResponse(req.ID, CodeInternalError, "Internal error")
		}
	}()

	if req.IsNotification() {
		s.handleNotification(ctx, &req)
		return nil
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if rpcErr != nil {
		return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: rpcErr}
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result}
}

func (s *Server) handleNotification(ctx context.Context, req *Request) {
	switch req.Method {
	case "notifications/initialized":
		s.initialized.Store(true)
		s.logger.Info(ctx, "client initialized")
	default:
		s.logger.Debug(ctx, "notification ignored", observe.Field{Key: "method", Value: req.Method})
	}
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *Error) {
	switch req.Method {
	case "initialize":
		return s.initialize(ctx, req.Params)
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return s.listTools(ctx), nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
	}
}

func (s *Server) initialize(ctx context.Context, raw json.RawMessage) (any, *Error) {
	var p initializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: " + err.Error()}
		}
	}

	version := ProtocolVersion
	if slices.Contains(supportedVersions, p.ProtocolVersion) {
		version = p.ProtocolVersion
	}
	s.logger.Info(ctx, "client connected",
		observe.Field{Key: "client", Value: p.ClientInfo.Name},
		observe.Field{Key: "client_version", Value: p.ClientInfo.Version},
		observe.Field{Key: "protocol_version", Value: version},
	)

	return InitializeResult{
		ProtocolVersion: version,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo:   s.info,
		Instructions: s.instructions,
	}, nil
}

func (s *Server) listTools(ctx context.Context) ListToolsResult {
	all := s.registry.List()
	id := auth.IdentityFromContext(ctx)
	if s.authz == nil || id == nil {
		return ListToolsResult{Tools: all}
	}

	visible := make([]tools.Tool, 0, len(all))
	for _, t := range all {
		if s.authorize(ctx, id, t.Name) == nil {
			visible = append(visible, t)
		}
	}
	return ListToolsResult{Tools: visible}
}

func (s *Server) authorize(ctx context.Context, id *auth.Identity, tool string) error {
	return s.authz.Authorize(ctx, &auth.AuthzRequest{
		Subject: id,
		Tool:    tool,
		Action:  auth.ActionCall,
	})
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *Error) {
	var p callToolParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: " + err.Error()}
	}
	if p.Name == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: tool name is required"}
	}

	if id := auth.IdentityFromContext(ctx); s.authz != nil && id != nil {
		if err := s.authorize(ctx, id, p.Name); err != nil {
			s.logger.Warn(ctx, "tool call denied",
				observe.Field{Key: "tool", Value: p.Name},
				observe.Field{Key: "principal", Value: id.Principal},
			)
			return nil, &Error{Code: CodeForbidden, Message: "Access denied to tool: " + p.Name}
		}
	}

	res, err := s.registry.Call(ctx, p.Name, p.Arguments)
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return nil, &Error{Code: CodeInvalidParams, Message: "Unknown tool: " + p.Name}
	case errors.Is(err, tools.ErrInvalidArguments):
		return nil, &Error{Code: CodeInvalidParams, Message: "Invalid params: " + err.Error()}
	case err != nil:
		return nil, &Error{Code: CodeInternalError, Message: "Internal error"}
	}

	return CallToolResult{
		Content: []Content{{Type: "text", Text: res.Text}},
		IsError: res.IsError,
	}, nil
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(errorResponse(nil, CodeInternalError, "Internal error"))
	}
	return b
}
