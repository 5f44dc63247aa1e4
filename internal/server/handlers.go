package server

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-edit-mcp/internal/params"
	"github.com/ironsheep/image-edit-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "resize_image", "apply_blur").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as a JSON object.
	Arguments map[string]interface{} `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the result envelope in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON envelope>"}],
//	  "isError": false
//	}
//
// A failed operation is still a successful JSON-RPC response; it carries
// the failure envelope and sets isError. Only an unknown tool (-32000) or
// unreadable params (-32602) produce a JSON-RPC error.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var call ToolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if !params.Known(call.Name) {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", "unknown tool: "+call.Name)
	}
	if call.Arguments == nil {
		call.Arguments = map[string]interface{}{}
	}

	env := s.pipeline.Execute(ctx, call.Name, call.Arguments)
	text, ok := marshalEnvelope(env)

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
			"isError": !ok || !env.Success,
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalEnvelope renders env as pretty-printed JSON. If env cannot be
// encoded the caller still gets a failure envelope naming the cause, and
// ok is false.
func marshalEnvelope(env pipeline.Envelope) (text string, ok bool) {
	b, err := json.MarshalIndent(env, "", "  ")
	if err == nil {
		return string(b), true
	}
	log.Error().Err(err).Msg("failed to encode result envelope")
	b, _ = json.MarshalIndent(pipeline.Envelope{Error: "failed to encode result: " + err.Error()}, "", "  ")
	return string(b), false
}
