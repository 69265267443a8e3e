package aparavi

import "fmt"

// Result is the response envelope every Aparavi endpoint returns:
// a status string plus optional data, error, and metrics objects.
type Result struct {
	Status  string                 `json:"status"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   map[string]interface{} `json:"error,omitempty"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// IsError reports whether the envelope carries an Error status.
func (r *Result) IsError() bool {
	return r.Status == "Error"
}

// ErrorMessage extracts the error message from the envelope, falling back
// to a formatted dump of the error object.
func (r *Result) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	if msg, ok := r.Error["message"].(string); ok {
		return msg
	}
	return fmt.Sprintf("%v", r.Error)
}

// ServiceUp reports whether the task's webhook service is up and accepting
// payloads, per the data.serviceUp flag on task status responses.
func (r *Result) ServiceUp() bool {
	if r.Data == nil {
		return false
	}
	up, ok := r.Data["serviceUp"].(bool)
	return ok && up
}

// WebhookURL returns the first entry of data.notes, which carries the
// webhook URL on ready tasks. Empty if absent.
func (r *Result) WebhookURL() string {
	if r.Data == nil {
		return ""
	}
	notes, ok := r.Data["notes"].([]interface{})
	if !ok || len(notes) == 0 {
		return ""
	}
	url, _ := notes[0].(string)
	return url
}
