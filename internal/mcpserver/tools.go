package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCP protocol error codes.
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
)

// MCPError is a JSON-RPC error the framework encodes for the client.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// handleDocumentProcessor runs the standard parsing pipeline on one file.
func (s *Server) handleDocumentProcessor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(request)
	if err != nil {
		return nil, err
	}

	result, err := s.processor.Process(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "document processing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatResult(result)), nil
}

// handleOCRParser runs the LlamaParse OCR pipeline on one file.
func (s *Server) handleOCRParser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := filePathArg(request)
	if err != nil {
		return nil, err
	}

	result, err := s.processor.ProcessOCR(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "OCR processing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatResult(result)), nil
}

// filePathArg extracts and validates the file_path parameter.
func filePathArg(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["file_path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "file_path parameter is required", map[string]interface{}{
			"param":  "file_path",
			"reason": "missing or empty",
		})
	}
	return path, nil
}

// formatResult renders a processing result as indented JSON for the tool
// response body.
func formatResult(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
