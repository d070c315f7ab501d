package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cabinet-go/cabinet/internal/match"
)

// collectionDefJSON is the declarative on-disk form of a collection: identity
// and document types, without the extraction code, which is bound separately.
type collectionDefJSON struct {
	Name          string `json:"name"`
	PublicName    string `json:"public_name"`
	Description   string `json:"description"`
	DocumentTypes []struct {
		Name               string   `json:"name"`
		PublicName         string   `json:"public_name"`
		Display            string   `json:"display"`
		Format             string   `json:"format"`
		RequiredAttributes []string `json:"required_attributes"`
		Matcher            *struct {
			DateKey         string `json:"date_key"`
			AmountKey       string `json:"amount_key"`
			ToleranceAfter  int    `json:"tolerance_after"`
			ToleranceBefore *int   `json:"tolerance_before"`
		} `json:"matcher"`
	} `json:"document_types"`
}

// collectionDefSchema constrains declarative definition files. Definitions
// come from many collaborators; a malformed file is rejected whole before any
// of it reaches the registry.
func collectionDefSchema() map[string]any {
	matcherProps := map[string]any{
		"date_key":         map[string]any{"type": "string", "minLength": 1},
		"amount_key":       map[string]any{"type": "string", "minLength": 1},
		"tolerance_after":  map[string]any{"type": "integer", "minimum": 0},
		"tolerance_before": map[string]any{"type": "integer", "minimum": 0},
	}
	typeProps := map[string]any{
		"name":                map[string]any{"type": "string", "minLength": 1},
		"public_name":         map[string]any{"type": "string"},
		"display":             map[string]any{"type": "string"},
		"format":              map[string]any{"type": "string"},
		"required_attributes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"matcher": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           matcherProps,
			"required":             []string{"date_key", "amount_key", "tolerance_after"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1},
			"public_name": map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"document_types": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           typeProps,
					"required":             []string{"name"},
				},
			},
		},
		"required": []string{"name"},
	}
}

func validateDefinition(data []byte) error {
	b, err := json.Marshal(collectionDefSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("collection.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("collection.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal definition: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("definition does not match schema: %w", err)
	}
	return nil
}

// LoadCollection validates and installs a declarative collection definition.
// Extraction capabilities are looked up from extractors by document type
// name; declared types with no matching extractor are diagnosed and skipped,
// the rest of the collection installs normally.
func (r *Registry) LoadCollection(data []byte, extractors map[string]Extractor) (*Collection, error) {
	if err := validateDefinition(data); err != nil {
		return nil, err
	}
	var def collectionDefJSON
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	c := NewCollection(def.Name, def.PublicName, def.Description)
	r.Register(c)

	for _, t := range def.DocumentTypes {
		spec := DocumentTypeSpec{
			PublicName:         t.PublicName,
			DisplayTemplate:    t.Display,
			FormatTemplate:     t.Format,
			RequiredAttributes: t.RequiredAttributes,
			Extractor:          extractors[t.Name],
		}
		if t.Matcher != nil {
			m := match.New(t.Matcher.DateKey, t.Matcher.AmountKey, t.Matcher.ToleranceAfter)
			if t.Matcher.ToleranceBefore != nil {
				m.ToleranceBefore = *t.Matcher.ToleranceBefore
			}
			spec.Matcher = m
		}
		// Fail-soft per type: a missing extractor is already diagnosed by
		// DefineDocumentType and must not abort the sibling types.
		_ = r.DefineDocumentType(def.Name, t.Name, spec)
	}
	return c, nil
}
