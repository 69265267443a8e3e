// Package docproc runs documents through Aparavi processing pipelines and
// extracts the parsed text from the results. It is the bridge between the
// MCP tool surface and the raw API client.
package docproc

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/aparavi-software/aparavi-mcp/internal/aparavi"
	"github.com/aparavi-software/aparavi-mcp/internal/pathutil"
	"github.com/aparavi-software/aparavi-mcp/internal/pipeline"
)

// Status values reported on processing results.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// TaskClient is the slice of the Aparavi client the processor needs.
type TaskClient interface {
	CreateAndWaitForTask(ctx context.Context, pipeline interface{}, name string, threads int) (token, taskType string, status *aparavi.Result, err error)
	SendToWebhook(ctx context.Context, token, taskType, fileGlob string) ([]*aparavi.Result, error)
	EndTask(ctx context.Context, token, taskType string) (*aparavi.Result, error)
}

// Result is the outcome of one document run.
type Result struct {
	// Text is the extracted document text. Empty when processing produced
	// no text.
	Text string `json:"text"`

	// Status is "completed" or "failed".
	Status string `json:"status"`
}

// Processor submits documents to pipelines owned by a single API client.
type Processor struct {
	client      TaskClient
	llamaAPIKey string
}

// NewProcessor builds a Processor. llamaAPIKey may be empty; OCR processing
// then reports an error when invoked.
func NewProcessor(client TaskClient, llamaAPIKey string) *Processor {
	return &Processor{client: client, llamaAPIKey: llamaAPIKey}
}

// Process runs a document through the plain parsing pipeline and returns
// the extracted text.
func (p *Processor) Process(ctx context.Context, filePath string) (*Result, error) {
	def, err := pipeline.SimpleParser()
	if err != nil {
		return nil, err
	}
	return p.run(ctx, def, filePath)
}

// ProcessOCR runs a document through the llamaparse OCR pipeline. Requires
// a LlamaParse API key.
func (p *Processor) ProcessOCR(ctx context.Context, filePath string) (*Result, error) {
	if p.llamaAPIKey == "" {
		return nil, fmt.Errorf("LLAMA_CLOUD_API_KEY is required for OCR processing")
	}
	def, err := pipeline.LlamaParse(p.llamaAPIKey)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, def, filePath)
}

// run drives one document through a pipeline: create the task, wait for
// its webhook, upload the file, extract text from the response.
func (p *Processor) run(ctx context.Context, def *pipeline.Definition, filePath string) (*Result, error) {
	path, err := pathutil.Normalize(filePath)
	if err != nil {
		return nil, fmt.Errorf("bad file path %q: %w", filePath, err)
	}
	if !pathutil.FileExists(path) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	log.Printf("docproc: processing %s", path)

	name := "Process " + filepath.Base(path)
	token, taskType, _, err := p.client.CreateAndWaitForTask(ctx, def.Wrap(), name, 0)
	if err != nil {
		return nil, err
	}
	defer func() {
		// The task served its purpose once the upload response is in.
		if _, err := p.client.EndTask(context.WithoutCancel(ctx), token, taskType); err != nil {
			log.Printf("docproc: ending task %s: %v", token, err)
		}
	}()

	responses, err := p.client.SendToWebhook(ctx, token, taskType, path)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return &Result{Status: StatusFailed}, nil
	}

	text := ExtractText(responses[0])
	if text == "" {
		return &Result{Status: StatusFailed}, nil
	}
	return &Result{Text: text, Status: StatusCompleted}, nil
}

// ExtractText pulls the parsed text out of a webhook response envelope.
// The payload nests as data.objects.<id>.text[0]; anything missing along
// the way yields an empty string rather than an error, since a non-text
// result is a valid outcome.
func ExtractText(r *aparavi.Result) string {
	if r == nil || r.Status != "OK" || r.Data == nil {
		return ""
	}
	objects, ok := r.Data["objects"].(map[string]interface{})
	if !ok || len(objects) == 0 {
		return ""
	}
	for _, obj := range objects {
		fields, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		switch text := fields["text"].(type) {
		case []interface{}:
			if len(text) > 0 {
				if s, ok := text[0].(string); ok {
					return s
				}
			}
		case string:
			return text
		}
	}
	return ""
}
