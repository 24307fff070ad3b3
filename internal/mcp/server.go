package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"dropcast/internal/config"
	"dropcast/internal/presets"
)

const (
	serverName    = "dropcast"
	serverVersion = "0.1.0"
	protocolDate  = "2024-11-05"
)

// JSONRPCRequest is one line of the stdio protocol.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse answers a request by ID.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func rpcError(code int, message string) map[string]interface{} {
	return map[string]interface{}{"code": code, "message": message}
}

// Server dispatches MCP requests to the registered tool set.
type Server struct {
	cfg     *config.AppConfig
	presets *presets.Loader
	tools   []*tool
	byName  map[string]*tool
}

// NewServer creates a new MCP server and registers the tool set.
func NewServer(cfg *config.AppConfig, loader *presets.Loader) *Server {
	s := &Server{
		cfg:     cfg,
		presets: loader,
		byName:  make(map[string]*tool),
	}
	s.registerTools()
	return s
}

// Serve runs the JSON-RPC loop over stdin/stdout until EOF.
func (s *Server) Serve() error {
	return s.serve(os.Stdin, os.Stdout)
}

// serve is the transport-agnostic loop; tests drive it with buffers.
func (s *Server) serve(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Dropping undecodable request line")
			continue
		}

		s.handleRequest(out, req)
	}
}

func (s *Server) handleRequest(out io.Writer, req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": protocolDate,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		}
	case "notifications/initialized":
		// Notification: no id, no response.
		return
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = rpcError(-32601, fmt.Sprintf("Method %q not found", req.Method))
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	enc, _ := json.Marshal(resp)
	fmt.Fprintf(out, "%s\n", enc)
}

func (s *Server) listTools() interface{} {
	descs := make([]interface{}, 0, len(s.tools))
	for _, t := range s.tools {
		descs = append(descs, map[string]interface{}{
			"name":        t.name,
			"description": t.description,
			"inputSchema": t.schema,
		})
	}
	return map[string]interface{}{"tools": descs}
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, rpcError(-32602, "Invalid params")
	}

	t, ok := s.byName[call.Name]
	if !ok {
		return nil, rpcError(-32601, "Tool not found")
	}

	if len(call.Arguments) == 0 {
		call.Arguments = json.RawMessage(`{}`)
	}
	if t.resolved != nil {
		var instance interface{}
		if err := json.Unmarshal(call.Arguments, &instance); err != nil {
			return nil, rpcError(-32602, "Invalid params")
		}
		if err := t.resolved.Validate(instance); err != nil {
			return nil, rpcError(-32602, err.Error())
		}
	}

	data, err := t.handler(call.Arguments)
	if err != nil {
		return nil, rpcError(-32000, err.Error())
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	enc, _ := json.MarshalIndent(data, "", "  ")
	return string(enc)
}
