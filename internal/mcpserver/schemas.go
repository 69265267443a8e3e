package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// documentProcessorTool returns the tool definition for the standard
// parsing pipeline.
func documentProcessorTool() mcp.Tool {
	return mcp.Tool{
		Name:        "Aparavi_Document_Processor",
		Description: "Process a document through the Aparavi parsing pipeline and return its extracted text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the document file to process",
				},
			},
			Required: []string{"file_path"},
		},
	}
}

// ocrParserTool returns the tool definition for the LlamaParse OCR
// pipeline. Requires LLAMA_CLOUD_API_KEY to be configured.
func ocrParserTool() mcp.Tool {
	return mcp.Tool{
		Name:        "Advanced_OCR_Parser",
		Description: "Process a scanned or image-heavy document through the LlamaParse OCR pipeline and return its extracted text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the document file to process with OCR",
				},
			},
			Required: []string{"file_path"},
		},
	}
}
