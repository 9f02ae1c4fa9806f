// Package validation checks incoming entity payloads against JSON
// schemas before they reach the stores.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const applicationSchema = `{
	"type": "object",
	"required": ["company", "role", "dateApplied"],
	"properties": {
		"company":     {"type": "string", "minLength": 1},
		"role":        {"type": "string", "minLength": 1},
		"status":      {"type": "string", "enum": ["applied", "screening", "interviewing", "offer", "rejected", "withdrawn"]},
		"source":      {"type": "string"},
		"dateApplied": {"type": "string", "format": "date-time"},
		"notes":       {"type": "string"},
		"salaryRange": {
			"type": "object",
			"properties": {
				"min": {"type": ["integer", "null"]},
				"max": {"type": ["integer", "null"]}
			}
		},
		"contacts": {"type": "array", "items": {"type": "string"}}
	}
}`

const contactSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name":              {"type": "string", "minLength": 2},
		"email":             {"type": "string"},
		"company":           {"type": "string"},
		"role":              {"type": "string"},
		"metAt":             {"type": "string", "enum": ["linkedin", "career_fair", "meetup", "referral", "cold_outreach", "other"]},
		"metDate":           {"type": "string", "format": "date-time"},
		"followUpDate":      {"type": ["string", "null"], "format": "date-time"},
		"lastContactedDate": {"type": ["string", "null"], "format": "date-time"},
		"notes":             {"type": "string"}
	}
}`

// Update payloads are partial: same field rules, nothing required.
const applicationUpdateSchema = `{
	"type": "object",
	"properties": {
		"company":     {"type": "string", "minLength": 1},
		"role":        {"type": "string", "minLength": 1},
		"status":      {"type": "string", "enum": ["applied", "screening", "interviewing", "offer", "rejected", "withdrawn"]},
		"source":      {"type": "string"},
		"dateApplied": {"type": "string", "format": "date-time"},
		"notes":       {"type": "string"},
		"salaryRange": {
			"type": "object",
			"properties": {
				"min": {"type": ["integer", "null"]},
				"max": {"type": ["integer", "null"]}
			}
		},
		"contacts": {"type": "array", "items": {"type": "string"}}
	}
}`

const contactUpdateSchema = `{
	"type": "object",
	"properties": {
		"name":              {"type": "string", "minLength": 2},
		"email":             {"type": "string"},
		"company":           {"type": "string"},
		"role":              {"type": "string"},
		"metAt":             {"type": "string", "enum": ["linkedin", "career_fair", "meetup", "referral", "cold_outreach", "other"]},
		"metDate":           {"type": "string", "format": "date-time"},
		"followUpDate":      {"type": ["string", "null"], "format": "date-time"},
		"lastContactedDate": {"type": ["string", "null"], "format": "date-time"},
		"notes":             {"type": "string"}
	}
}`

var (
	applicationLoader       = gojsonschema.NewStringLoader(applicationSchema)
	contactLoader           = gojsonschema.NewStringLoader(contactSchema)
	applicationUpdateLoader = gojsonschema.NewStringLoader(applicationUpdateSchema)
	contactUpdateLoader     = gojsonschema.NewStringLoader(contactUpdateSchema)
)

// ValidateApplicationPayload checks a raw application create/update
// payload.
func ValidateApplicationPayload(raw []byte) (*ValidationResult, error) {
	return validate(applicationLoader, raw)
}

// ValidateContactPayload checks a raw contact create/update payload.
func ValidateContactPayload(raw []byte) (*ValidationResult, error) {
	return validate(contactLoader, raw)
}

// ValidateApplicationUpdatePayload checks a partial application update
// payload; absent fields are fine, present fields follow create rules.
func ValidateApplicationUpdatePayload(raw []byte) (*ValidationResult, error) {
	return validate(applicationUpdateLoader, raw)
}

// ValidateContactUpdatePayload checks a partial contact update payload.
func ValidateContactUpdatePayload(raw []byte) (*ValidationResult, error) {
	return validate(contactUpdateLoader, raw)
}

func validate(schema gojsonschema.JSONLoader, raw []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
