package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema describes the persisted configuration document. Stores use
// it to reject structurally broken documents before unmarshaling, so that a
// half-written or foreign file degrades to the empty default instead of
// producing a half-decoded Document.
const documentSchema = `{
	"type": "object",
	"properties": {
		"endpoints": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id":       {"type": "string"},
					"name":     {"type": "string"},
					"device":   {"type": "string"},
					"probeKey": {"type": "string"},
					"nodeName": {"type": "string"},
					"probeId":  {"type": "string"},
					"keepScreenshots": {"type": "boolean"}
				},
				"required": ["id", "name", "probeKey", "nodeName", "probeId"]
			}
		},
		"lastUsedEndpoint": {"type": ["string", "null"]}
	},
	"required": ["endpoints"]
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(documentSchema)))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("stash://schema/document", doc); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("stash://schema/document")
	})
	return compiledSchema, schemaErr
}

// DecodeDocument validates raw JSON against the document schema and
// unmarshals it. Callers (store backends) treat any error as "corrupt
// storage" and fall back to the empty default document.
func DecodeDocument(raw []byte) (*Document, error) {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}
