// Package pipeline holds the embedded Aparavi pipeline definitions and the
// helpers that prepare them for task submission. A definition on disk is a
// bare component list; the API expects it wrapped in a pipeline object that
// names the source component.
package pipeline

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
)

// SourceComponent is the ingest component every embedded pipeline feeds
// from. Uploaded files enter the pipeline here.
const SourceComponent = "webhook_1"

//go:embed resources/pipelines/simpleparser.json
var simpleParserJSON []byte

//go:embed resources/pipelines/llamaparse.json
var llamaParseJSON []byte

// Definition is a pipeline as stored on disk: a list of components.
type Definition struct {
	Components []map[string]interface{} `json:"components"`
}

// Request is the wrapped form the API accepts for validation and task
// creation.
type Request struct {
	Pipeline struct {
		Source     string                   `json:"source"`
		Components []map[string]interface{} `json:"components"`
	} `json:"pipeline"`
}

// load decodes an embedded definition. UseNumber keeps numeric config
// values intact through a decode/encode round trip.
func load(data []byte) (*Definition, error) {
	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decoding pipeline definition: %w", err)
	}
	if len(def.Components) == 0 {
		return nil, fmt.Errorf("pipeline definition has no components")
	}
	return &def, nil
}

// SimpleParser returns the plain document parsing pipeline.
func SimpleParser() (*Definition, error) {
	return load(simpleParserJSON)
}

// LlamaParse returns the OCR pipeline built on the llamaparse provider.
// apiKey is injected into the provider component and is required.
func LlamaParse(apiKey string) (*Definition, error) {
	def, err := load(llamaParseJSON)
	if err != nil {
		return nil, err
	}
	if err := def.InsertProviderKey("llamaparse", apiKey); err != nil {
		return nil, err
	}
	return def, nil
}

// InsertProviderKey sets config.default.api_key on the first component with
// the given provider. Missing provider is an error since the pipeline would
// be rejected server-side without credentials.
func (d *Definition) InsertProviderKey(provider, apiKey string) error {
	for _, component := range d.Components {
		if component["provider"] != provider {
			continue
		}
		config, ok := component["config"].(map[string]interface{})
		if !ok {
			config = map[string]interface{}{}
			component["config"] = config
		}
		defaults, ok := config["default"].(map[string]interface{})
		if !ok {
			defaults = map[string]interface{}{}
			config["default"] = defaults
		}
		defaults["api_key"] = apiKey
		return nil
	}
	return fmt.Errorf("pipeline has no %q component", provider)
}

// Wrap produces the request form the task endpoints expect.
func (d *Definition) Wrap() *Request {
	req := &Request{}
	req.Pipeline.Source = SourceComponent
	req.Pipeline.Components = d.Components
	return req
}
