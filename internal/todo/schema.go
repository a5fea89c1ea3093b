package todo

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/utils"
)

//go:embed slot.schema.json
var slotSchema []byte

const embeddedSchemaURL = "slot.schema.json"

// SlotSchema returns the embedded JSON Schema for stored task lists.
func SlotSchema() []byte {
	return bytes.Clone(slotSchema)
}

// CompileSchema compiles the schema at path, or the embedded schema when
// path is empty.
func CompileSchema(path string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if path == "" {
		if err := compiler.AddResource(embeddedSchemaURL, bytes.NewReader(slotSchema)); err != nil {
			return nil, fmt.Errorf("load embedded schema: %w", err)
		}
		schema, err := compiler.Compile(embeddedSchemaURL)
		if err != nil {
			return nil, fmt.Errorf("compile embedded schema: %w", err)
		}
		return schema, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", absPath, err)
	}
	return schema, nil
}

// schemaErrors flattens a jsonschema error tree into leaf ValidationErrors.
func schemaErrors(err error) []error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var out []error
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}
