package codec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/colonyops/taskgraph/internal/core/task"
)

//go:embed schema/import.schema.json
var importSchemaJSON string

const importSchemaURL = "https://colonyops.dev/taskgraph/import.schema.json"

var importSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(importSchemaURL, strings.NewReader(importSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add import schema: %w", err)
	}
	return compiler.Compile(importSchemaURL)
})

func encodeJSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeJSON(data []byte) ([]task.Input, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse json: %v", task.ErrFormat, err)
	}

	schema, err := importSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %s", task.ErrFormat, schemaMessage(err))
	}

	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode tasks: %v", task.ErrFormat, err)
	}

	return inputs(doc.Tasks)
}

// schemaMessage reduces a schema validation error to its first leaf cause.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	location := ve.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, ve.Message)
}
