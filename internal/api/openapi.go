package api

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	openAPIVersion   = "3.1.0"
	recordSchemaName = "QRZLookupResponse"
	errorSchemaName  = "ErrorResponse"
)

// Info describes the service in the OpenAPI document.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Document is the subset of OpenAPI 3.1 the gateway needs to describe itself.
type Document struct {
	OpenAPI    string              `json:"openapi" yaml:"openapi"`
	Info       Info                `json:"info" yaml:"info"`
	Paths      map[string]PathItem `json:"paths" yaml:"paths"`
	Components Components          `json:"components" yaml:"components"`
}

// PathItem lists the operations of a single route.
type PathItem struct {
	Get *Operation `json:"get,omitempty" yaml:"get,omitempty"`
}

// Operation describes one HTTP operation.
type Operation struct {
	Summary     string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string              `json:"operationId" yaml:"operationId"`
	Parameters  []Parameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]Response `json:"responses" yaml:"responses"`
}

// Parameter describes a query parameter.
type Parameter struct {
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"`
	Required    bool    `json:"required" yaml:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema" yaml:"schema"`
}

// Response describes a single status code.
type Response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

// MediaType binds a schema to a content type.
type MediaType struct {
	Schema *Schema `json:"schema" yaml:"schema"`
}

// Components holds reusable schemas.
type Components struct {
	Schemas map[string]*Schema `json:"schemas" yaml:"schemas"`
}

// Schema is a JSON Schema fragment.
type Schema struct {
	Ref         string             `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string             `json:"type,omitempty" yaml:"type,omitempty"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	MinLength   *int               `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string           `json:"required,omitempty" yaml:"required,omitempty"`
}

// recordFields mirrors the JSON shape of qrz.Record.
var recordFields = []struct {
	name        string
	description string
}{
	{"call", "The queried callsign"},
	{"fname", "First name of the license holder"},
	{"name", "Last name of the license holder"},
	{"addr1", "Street address of the license holder"},
	{"addr2", "City of the license holder"},
	{"state", "State or province of the license holder"},
	{"zip", "Zip or postal code of the license holder"},
	{"country", "Country of the license holder"},
	{"license_class", "The operator's license class"},
}

// BuildDocument assembles the OpenAPI description of the gateway's public routes.
func BuildDocument(info Info) Document {
	minLen, maxLen := 3, 10

	record := &Schema{
		Type:        "object",
		Title:       recordSchemaName,
		Description: "Relevant fields from the QRZ.com XML data.",
		Properties:  make(map[string]*Schema, len(recordFields)),
		Required:    []string{"call"},
	}
	for _, f := range recordFields {
		record.Properties[f.name] = &Schema{Type: "string", Description: f.description}
	}

	errorBody := &Schema{
		Type:       "object",
		Title:      errorSchemaName,
		Properties: map[string]*Schema{"error": {Type: "string", Description: "Human-readable reason"}},
		Required:   []string{"error"},
	}

	jsonRef := func(name string) map[string]MediaType {
		return map[string]MediaType{
			"application/json": {Schema: &Schema{Ref: "#/components/schemas/" + name}},
		}
	}

	return Document{
		OpenAPI: openAPIVersion,
		Info:    info,
		Paths: map[string]PathItem{
			"/lookup": {
				Get: &Operation{
					Summary:     "Lookup",
					Description: "Look up a callsign via the QRZ.com XML service.",
					OperationID: "lookup_lookup_get",
					Parameters: []Parameter{{
						Name:     "callsign",
						In:       "query",
						Required: true,
						Schema:   &Schema{Type: "string", Title: "Callsign", MinLength: &minLen, MaxLength: &maxLen},
					}},
					Responses: map[string]Response{
						"200": {Description: "Successful Response", Content: jsonRef(recordSchemaName)},
						"422": {Description: "Invalid callsign or no usable record", Content: jsonRef(errorSchemaName)},
						"502": {Description: "QRZ service unavailable", Content: jsonRef(errorSchemaName)},
					},
				},
			},
		},
		Components: Components{
			Schemas: map[string]*Schema{
				recordSchemaName: record,
				errorSchemaName:  errorBody,
			},
		},
	}
}

// JSON renders the document as indented JSON.
func (d Document) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi json: %w", err)
	}
	return data, nil
}

// YAML renders the document as YAML.
func (d Document) YAML() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi yaml: %w", err)
	}
	return data, nil
}

// Render returns the document in the requested format ("json" or "yaml").
func (d Document) Render(format string) ([]byte, error) {
	switch format {
	case "json":
		return d.JSON()
	case "yaml", "yml":
		return d.YAML()
	default:
		return nil, fmt.Errorf("unsupported openapi format %q", format)
	}
}
