package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const protocolVersion = "2024-11-05"

// maxMessageSize bounds a single JSON-RPC line.
const maxMessageSize = 1024 * 1024

// Handler provides the tools and resources a Server exposes.
type Handler interface {
	ListTools() []Tool
	CallTool(ctx context.Context, name string, args map[string]any) (*CallToolResult, error)
	ListResources() []Resource
	ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error)
}

// Server implements an MCP server over newline-delimited JSON-RPC.
type Server struct {
	name    string
	version string
	handler Handler
	logger  *slog.Logger

	writer io.Writer
	mu     sync.Mutex
}

// NewServer creates a new MCP server.
func NewServer(name, version string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		name:    name,
		version: version,
		handler: handler,
		logger:  logger,
	}
}

// Run serves requests read from reader until EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context, reader io.Reader, writer io.Writer) error {
	s.writer = writer

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, maxMessageSize), maxMessageSize)

	s.logger.Info("MCP server started", "name", s.name, "version", s.version)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			s.logger.Info("server shutting down")
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		s.logger.Debug("received request", "raw", string(line))

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("failed to parse request", "error", err)
			s.send(errorResponse(nil, ErrCodeParse, "Parse error", err.Error()))
			continue
		}

		if resp := s.handleRequest(ctx, &req); resp != nil {
			s.send(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("scanner error", "error", err)
		return err
	}
	return nil
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("handling request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)

	case "initialized", "notifications/initialized":
		s.logger.Info("client initialized")
		return nil

	case "tools/list":
		return result(req.ID, ListToolsResult{Tools: s.handler.ListTools()})

	case "tools/call":
		return s.handleCallTool(ctx, req)

	case "resources/list":
		return result(req.ID, ListResourcesResult{Resources: s.handler.ListResources()})

	case "resources/read":
		return s.handleReadResource(ctx, req)

	case "ping":
		return result(req.ID, map[string]any{})

	default:
		if req.ID == nil {
			// Unknown notifications get no reply.
			return nil
		}
		s.logger.Warn("unknown method", "method", req.Method)
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	var params InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.logger.Error("failed to parse initialize params", "error", err)
		}
	}

	s.logger.Info("initializing",
		"client", params.ClientInfo.Name,
		"clientVersion", params.ClientInfo.Version,
		"protocolVersion", params.ProtocolVersion)

	return result(req.ID, InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		ServerInfo: ServerInfo{Name: s.name, Version: s.version},
	})
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	s.logger.Info("calling tool", "name", params.Name)

	res, err := s.handler.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Error("tool call failed", "name", params.Name, "error", err)
		return result(req.ID, ErrorResult(err.Error()))
	}
	return result(req.ID, res)
}

func (s *Server) handleReadResource(ctx context.Context, req *Request) *Response {
	var params ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
	}

	s.logger.Info("reading resource", "uri", params.URI)

	res, err := s.handler.ReadResource(ctx, params.URI)
	if err != nil {
		s.logger.Error("resource read failed", "uri", params.URI, "error", err)
		return errorResponse(req.ID, ErrCodeInternal, "Resource read failed", err.Error())
	}
	return result(req.ID, res)
}

func (s *Server) send(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	s.logger.Debug("sending response", "raw", string(data))

	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func result(id any, v any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: v}
}

func errorResponse(id any, code int, message, data string) *Response {
	e := &Error{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}
