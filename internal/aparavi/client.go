// Package aparavi is a client for the Aparavi EaaS API. It submits
// processing pipelines as tasks, waits for the per-task webhook service to
// come up, and uploads document payloads to it. All actual parsing and OCR
// happens server-side; this client only moves requests and files.
package aparavi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aparavi-software/aparavi-mcp/internal/pathutil"
)

// DefaultBaseURL is the hosted EaaS endpoint.
const DefaultBaseURL = "https://eaas-dev.aparavi.com"

// Log levels gating client progress output on stderr.
const (
	LogNone    = "none"
	LogNormal  = "normal"
	LogVerbose = "verbose"
)

// Options tunes client behavior beyond the base URL and key.
type Options struct {
	// Timeout bounds each HTTP request. Zero means 30 seconds.
	Timeout time.Duration

	// MaxRetries is the number of task-ready polling attempts.
	// Zero means 10.
	MaxRetries int

	// InitialDelay is the first polling delay; each subsequent delay grows
	// by DelayGrowth, matching the service's task spin-up profile.
	// Zero means 2 seconds.
	InitialDelay time.Duration

	// DelayGrowth is added to the polling delay after each attempt.
	// Zero means 2 seconds.
	DelayGrowth time.Duration

	// LogLevel is "none", "normal", or "verbose". Empty means "normal".
	LogLevel string
}

// Client talks to the Aparavi API with bearer-token authentication.
// It is safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	maxRetries   int
	initialDelay time.Duration
	delayGrowth  time.Duration
	logLevel     string
}

// NewClient builds a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey string, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 2 * time.Second
	}
	if opts.DelayGrowth <= 0 {
		opts.DelayGrowth = 2 * time.Second
	}
	if opts.LogLevel == "" {
		opts.LogLevel = LogNormal
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: opts.Timeout},
		maxRetries:   opts.MaxRetries,
		initialDelay: opts.InitialDelay,
		delayGrowth:  opts.DelayGrowth,
		logLevel:     opts.LogLevel,
	}
}

// logf writes progress output to stderr unless logging is off.
func (c *Client) logf(format string, args ...interface{}) {
	if c.logLevel != LogNone {
		log.Printf(format, args...)
	}
}

// vlogf writes output only at the verbose level.
func (c *Client) vlogf(format string, args ...interface{}) {
	if c.logLevel == LogVerbose {
		log.Printf(format, args...)
	}
}

// do performs one JSON request against the API and decodes the response
// envelope. HTTP status codes map onto the package error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body interface{}) (*Result, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.vlogf("aparavi: %s %s", method, u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp)
}

// decodeResponse maps HTTP errors to the package taxonomy and unmarshals
// the envelope on success.
func (c *Client) decodeResponse(resp *http.Response) (*Result, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: invalid API key", ErrAuthentication)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrValidation, string(data))
	case resp.StatusCode == http.StatusInternalServerError:
		// Unknown task tokens surface as 500s with a "not found" message.
		var envelope Result
		if json.Unmarshal(data, &envelope) == nil {
			if msg := envelope.ErrorMessage(); strings.Contains(strings.ToLower(msg), "not found") {
				return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, msg)
			}
		}
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(data))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(data))
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// ValidatePipeline checks a pipeline payload against POST /pipe/validate.
func (c *Client) ValidatePipeline(ctx context.Context, pipeline interface{}) (*Result, error) {
	result, err := c.do(ctx, http.MethodPost, "/pipe/validate", nil, pipeline)
	if err != nil {
		return nil, err
	}
	if result.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrPipeline, result.ErrorMessage())
	}
	c.vlogf("aparavi: pipeline validation successful")
	return result, nil
}

// ExecutePipeline validates the pipeline and creates a task for it via
// PUT /task. It returns the server-assigned task token and type; the type
// is chosen by the service and must be echoed on all later task calls.
// threads limits task parallelism (0 means server default, else 1-16).
func (c *Client) ExecutePipeline(ctx context.Context, pipeline interface{}, name string, threads int) (token, taskType string, err error) {
	if _, err := c.ValidatePipeline(ctx, pipeline); err != nil {
		return "", "", err
	}

	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	if threads != 0 {
		if threads < 1 || threads > 16 {
			return "", "", fmt.Errorf("threads must be between 1 and 16, got %d", threads)
		}
		query.Set("threads", strconv.Itoa(threads))
	}

	result, err := c.do(ctx, http.MethodPut, "/task", query, pipeline)
	if err != nil {
		return "", "", err
	}
	if result.IsError() {
		return "", "", fmt.Errorf("task execution failed: %s", result.ErrorMessage())
	}

	token, tokenOK := result.Data["token"].(string)
	taskType, typeOK := result.Data["type"].(string)
	if !tokenOK || !typeOK || token == "" || taskType == "" {
		return "", "", fmt.Errorf("server response missing required token or type")
	}

	c.logf("aparavi: task created (token=%s type=%s)", token, taskType)
	return token, taskType, nil
}

// TaskStatus fetches the status envelope for a task.
func (c *Client) TaskStatus(ctx context.Context, token, taskType string) (*Result, error) {
	query := url.Values{"token": {token}, "type": {taskType}}

	// Connection-level failures during spin-up are transient; API-level
	// errors are not.
	result, err := retryWithBackoff(ctx, transportRetries, func() (*Result, error) {
		return c.do(ctx, http.MethodGet, "/task", query, nil)
	}, isTransient)
	if err != nil {
		return nil, err
	}

	if result.IsError() {
		msg := result.ErrorMessage()
		if strings.Contains(strings.ToLower(msg), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, msg)
		}
		return nil, fmt.Errorf("failed to get task status: %s", msg)
	}
	return result, nil
}

// isTransient reports whether an error is a connection-level failure worth
// retrying, as opposed to an API response.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset")
}

// EndTask cancels a running task via DELETE /task.
func (c *Client) EndTask(ctx context.Context, token, taskType string) (*Result, error) {
	query := url.Values{"token": {token}, "type": {taskType}}
	result, err := c.do(ctx, http.MethodDelete, "/task", query, nil)
	if err != nil {
		return nil, err
	}
	if result.IsError() {
		msg := result.ErrorMessage()
		if strings.Contains(strings.ToLower(msg), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, msg)
		}
		return nil, fmt.Errorf("failed to end task: %s", msg)
	}
	c.logf("aparavi: task %s ended", token)
	return result, nil
}

// WaitForTaskReady polls TaskStatus until the task's webhook service
// reports up. The first wait is the configured initial delay and each
// subsequent wait grows by the configured growth increment; the number of
// attempts is bounded by the configured max retries and the context
// deadline.
func (c *Client) WaitForTaskReady(ctx context.Context, token, taskType string) (*Result, error) {
	delay := c.initialDelay

	c.logf("aparavi: waiting for task %s (type=%s, max %d attempts)", token, taskType, c.maxRetries)

	// Give the task a head start before the first status check.
	if err := sleepCtx(ctx, delay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTaskTimeout, err)
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		result, err := c.TaskStatus(ctx, token, taskType)
		switch {
		case err == nil:
			if result.ServiceUp() {
				c.logf("aparavi: task %s ready", token)
				if u := result.WebhookURL(); u != "" {
					c.vlogf("aparavi: webhook URL %s", u)
				}
				return result, nil
			}
			c.vlogf("aparavi: task %s not ready (attempt %d/%d)", token, attempt, c.maxRetries)
		case errors.Is(err, ErrTaskNotFound):
			// Freshly created tasks can be briefly unknown; keep polling.
			c.vlogf("aparavi: task %s not found yet (attempt %d/%d)", token, attempt, c.maxRetries)
			if attempt == c.maxRetries {
				return nil, fmt.Errorf("%w after %d attempts", ErrTaskNotFound, c.maxRetries)
			}
		default:
			return nil, fmt.Errorf("error checking task status: %w", err)
		}

		if attempt < c.maxRetries {
			delay += c.delayGrowth
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTaskTimeout, err)
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTaskTimeout, c.maxRetries)
}

// CreateAndWaitForTask creates a task for the pipeline and blocks until its
// webhook service is ready to accept payloads.
func (c *Client) CreateAndWaitForTask(ctx context.Context, pipeline interface{}, name string, threads int) (token, taskType string, status *Result, err error) {
	token, taskType, err = c.ExecutePipeline(ctx, pipeline, name, threads)
	if err != nil {
		return "", "", nil, err
	}

	status, err = c.WaitForTaskReady(ctx, token, taskType)
	if err != nil {
		return "", "", nil, err
	}
	return token, taskType, status, nil
}

// SendToWebhook uploads the files matching fileGlob to the task's webhook.
// A single file goes up as a raw PUT body with its detected content type;
// multiple files are sent as one multipart request under the "files" field.
// Returns the decoded response envelopes (one per request made).
func (c *Client) SendToWebhook(ctx context.Context, token, taskType, fileGlob string) ([]*Result, error) {
	paths, err := pathutil.GlobFiles(fileGlob)
	if err != nil {
		return nil, fmt.Errorf("bad file pattern %q: %w", fileGlob, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files matched pattern: %s", fileGlob)
	}

	query := url.Values{"token": {token}, "type": {taskType}}
	webhookURL := c.baseURL + "/webhook?" + query.Encode()

	var req *http.Request
	if len(paths) == 1 {
		req, err = c.singleFileRequest(ctx, webhookURL, paths[0])
	} else {
		req, err = c.multipartRequest(ctx, webhookURL, paths)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending to webhook: %w", err)
	}
	defer resp.Body.Close()

	result, err := c.decodeResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("webhook failed: %w", err)
	}

	if c.logLevel == LogVerbose {
		if pretty, jerr := json.MarshalIndent(result, "", "  "); jerr == nil {
			c.vlogf("aparavi: webhook response:\n%s", pretty)
		}
	}
	return []*Result{result}, nil
}

// singleFileRequest builds a raw-body PUT for one file.
func (c *Client) singleFileRequest(ctx context.Context, webhookURL, path string) (*http.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c.logf("aparavi: uploading %s to webhook", filepath.Base(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, webhookURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeFor(path))
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	return req, nil
}

// multipartRequest builds a multipart PUT carrying every file under the
// "files" form field.
func (c *Client) multipartRequest(ctx context.Context, webhookURL string, paths []string) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	c.logf("aparavi: uploading %d files to webhook (multipart)", len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			writer.Close()
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			writer.Close()
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			writer.Close()
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, webhookURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// contentTypeFor guesses a file's MIME type from its extension, defaulting
// to application/octet-stream.
func contentTypeFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// sleepCtx sleeps for d or returns early with the context's error.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
