package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// setupSchemaFS embeds the canonical JSON Schema a decoded setup-file/
// group-table document is checked against before LoadConfig unmarshals it
// into a Config, per spec.md §6's directory-map semantics.
//
//go:embed setup-schema.json
var setupSchemaFS embed.FS

// ErrSetupDocumentInvalid reports that a setup-file document failed schema
// validation; the message carries every violation gojsonschema found.
var ErrSetupDocumentInvalid = errors.New("setup document failed schema validation")

// ValidateSetupDocument checks raw (a decoded YAML/JSON setup-file or
// group-table document, already converted to a generic map/slice tree)
// against the embedded setup-file schema. It is called ahead of viper's
// Unmarshal so that malformed documents are rejected with field-level
// detail rather than surfacing as a confusing mapstructure error.
func ValidateSetupDocument(raw any) error {
	schemaBytes, err := setupSchemaFS.ReadFile("setup-schema.json")
	if err != nil {
		return fmt.Errorf("read embedded setup schema: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewGoLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		messages = append(messages, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSetupDocumentInvalid, strings.Join(messages, "; "))
}

// ValidateSetupJSON decodes raw JSON bytes (e.g. a group-table document
// converted from its native format upstream) and validates it against the
// embedded setup-file schema.
func ValidateSetupJSON(rawJSON []byte) error {
	var doc any

	dec := json.NewDecoder(strings.NewReader(string(rawJSON)))
	dec.UseNumber()

	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode setup document: %w", err)
	}

	return ValidateSetupDocument(doc)
}
