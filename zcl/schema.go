package zcl

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed document.schema.json
var documentSchemaJSON []byte

const documentSchemaURL = "document.schema.json"

var (
	documentSchemaOnce sync.Once
	documentSchema     *jsonschema.Schema
	documentSchemaErr  error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(documentSchemaJSON))
		if err != nil {
			documentSchemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, doc); err != nil {
			documentSchemaErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		documentSchema, documentSchemaErr = c.Compile(documentSchemaURL)
	})
	return documentSchema, documentSchemaErr
}

// validateDocument checks the structure of a decoded document against the
// embedded JSON Schema: required fields, id patterns and flag spellings.
func validateDocument(source string, doc *Document) error {
	sch, err := compiledDocumentSchema()
	if err != nil {
		return fmt.Errorf("zcl: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return invalid(source, "", "marshal: %v", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return invalid(source, "", "unmarshal: %v", err)
	}
	if err := sch.Validate(inst); err != nil {
		return invalid(source, "", "%v", err)
	}
	return nil
}
