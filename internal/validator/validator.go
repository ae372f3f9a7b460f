// Package validator provides JSON schema validation for the HTTP
// request bodies.
package validator

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates workflow and agent run requests.
type Validator struct {
	runSchema    *jsonschema.Schema
	agentSchema  *jsonschema.Schema
	rejectSchema *jsonschema.Schema
}

// ValidationError represents a single validation failure.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult holds the result of a validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// New creates a validator with the embedded schemas compiled.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	schemas := map[string]string{
		"run.json":    runRequestSchemaJSON,
		"agent.json":  agentRequestSchemaJSON,
		"reject.json": rejectRequestSchemaJSON,
	}
	compiled := make(map[string]*jsonschema.Schema, len(schemas))
	for name, src := range schemas {
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	for name := range schemas {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		compiled[name] = schema
	}

	return &Validator{
		runSchema:    compiled["run.json"],
		agentSchema:  compiled["agent.json"],
		rejectSchema: compiled["reject.json"],
	}, nil
}

// ValidateRunRequest validates a decoded workflow-run request body.
func (v *Validator) ValidateRunRequest(body map[string]interface{}) *ValidationResult {
	return v.validate(v.runSchema, body)
}

// ValidateAgentRequest validates a decoded single-agent request body.
func (v *Validator) ValidateAgentRequest(body map[string]interface{}) *ValidationResult {
	return v.validate(v.agentSchema, body)
}

// ValidateRejectRequest validates a decoded reject request body.
func (v *Validator) ValidateRejectRequest(body map[string]interface{}) *ValidationResult {
	return v.validate(v.rejectSchema, body)
}

func (v *Validator) validate(schema *jsonschema.Schema, data interface{}) *ValidationResult {
	err := schema.Validate(data)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	result := &ValidationResult{Valid: false}
	if verr, ok := err.(*jsonschema.ValidationError); ok {
		result.Errors = extractErrors(verr)
	} else {
		result.Errors = []ValidationError{{Path: "$", Message: err.Error()}}
	}
	return result
}

func extractErrors(verr *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError
	if verr.Message != "" {
		errors = append(errors, ValidationError{
			Path:    verr.InstanceLocation,
			Message: verr.Message,
		})
	}
	for _, cause := range verr.Causes {
		errors = append(errors, extractErrors(cause)...)
	}
	return errors
}

// Embedded JSON schemas

const runRequestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "skip_analysis": {"type": "boolean"},
    "topic": {"type": "string", "maxLength": 500},
    "collect_data": {"type": "boolean"},
    "quick": {"type": "boolean"}
  },
  "additionalProperties": false
}`

const agentRequestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "topic": {"type": "string", "maxLength": 500},
    "quick": {"type": "boolean"},
    "seed": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  },
  "additionalProperties": false
}`

const rejectRequestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "reason": {"type": "string", "maxLength": 2000}
  },
  "additionalProperties": false
}`
