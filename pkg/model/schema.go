package model

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://ets.schemas.local/"

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	schemas = make(map[string]*jsonschema.Schema)
	for _, name := range []string{"event", "category"} {
		data, err := schemaFS.ReadFile("schema/" + name + ".schema.json")
		if err != nil {
			schemasErr = fmt.Errorf("read %s schema: %w", name, err)
			return
		}
		url := schemaBaseURL + name + ".schema.json"
		if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
			schemasErr = fmt.Errorf("%s schema load failed: %w", name, err)
			return
		}
		compiled, err := c.Compile(url)
		if err != nil {
			schemasErr = fmt.Errorf("%s schema compile failed: %w", name, err)
			return
		}
		schemas[name] = compiled
	}
}

// ValidateEventMetadata checks an event document before it is uploaded.
// doc may be an EventMetadata, a MetadataRecord or any JSON-encodable value.
func ValidateEventMetadata(doc any) error {
	return validate("event", doc)
}

// ValidateCategoryMetadata checks a ticket category document before it is uploaded.
func ValidateCategoryMetadata(doc any) error {
	return validate("category", doc)
}

func validate(name string, doc any) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s metadata: %w", name, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("decode %s metadata: %w", name, err)
	}

	if err := schemas[name].Validate(generic); err != nil {
		return fmt.Errorf("invalid %s metadata: %w", name, err)
	}
	return nil
}
