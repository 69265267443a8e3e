// Package mcpserver exposes Aparavi document processing as MCP tools over
// stdio. Stdout carries the JSON-RPC stream, so all diagnostics go to
// stderr.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/aparavi-software/aparavi-mcp/internal/aparavi"
	"github.com/aparavi-software/aparavi-mcp/internal/config"
	"github.com/aparavi-software/aparavi-mcp/internal/docproc"
)

const (
	// ServerName identifies the server during the MCP handshake.
	ServerName = "aparavi-mcp"
	// ServerVersion is the advertised server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the document processor it serves.
type Server struct {
	mcp       *server.MCPServer
	processor *docproc.Processor
}

// NewServer builds the server from configuration. An API key is required;
// the LlamaParse key is optional and only gates the OCR tool at call time.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client := aparavi.NewClient(cfg.APIURL, cfg.APIKey, aparavi.Options{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.InitialDelay,
		LogLevel:     clientLogLevel(cfg.LogLevel),
	})

	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		processor: docproc.NewProcessor(client, cfg.LlamaAPIKey),
	}
	s.registerTools()
	return s, nil
}

// clientLogLevel maps the process-wide log level onto the API client's.
func clientLogLevel(level string) string {
	switch level {
	case config.LogNone:
		return aparavi.LogNone
	case config.LogVerbose:
		return aparavi.LogVerbose
	default:
		return aparavi.LogNormal
	}
}

// Serve runs the MCP server on stdio and blocks until the client
// disconnects or ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	}
}

// registerTools wires the document processing tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(documentProcessorTool(), s.handleDocumentProcessor)
	s.mcp.AddTool(ocrParserTool(), s.handleOCRParser)
}
