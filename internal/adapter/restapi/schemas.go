package restapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://schemas.marketplace.local/"

// Response schema names.
const (
	SchemaAdvertisementList     = "advertisement_list"
	SchemaUserAdvertisements    = "user_advertisements"
	SchemaAdvertisementEnvelope = "advertisement_envelope"
	SchemaCategories            = "categories"
	SchemaBrands                = "brands"
	SchemaAuthValidate          = "auth_validate"
)

type schemaSet struct {
	compiled map[string]*jsonschema.Schema
}

var (
	schemasOnce   sync.Once
	sharedSchemas *schemaSet
	schemasErr    error
)

func loadSchemas() (*schemaSet, error) {
	schemasOnce.Do(func() {
		sharedSchemas, schemasErr = compileSchemas()
	})
	return sharedSchemas, schemasErr
}

func compileSchemas() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()

	// Register every file first so schemas can $ref each other.
	var names []string
	err := fs.WalkDir(schemaFS, "schemas", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		file, err := schemaFS.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		name := strings.TrimSuffix(strings.TrimPrefix(path, "schemas/"), ".json")
		if err := compiler.AddResource(schemaBaseURL+name+".json", file); err != nil {
			return fmt.Errorf("add schema resource %s: %w", path, err)
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	set := &schemaSet{compiled: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		set.compiled[name] = schema
	}
	return set, nil
}

// validate checks raw against the named schema.
func (s *schemaSet) validate(name string, raw []byte) error {
	schema, ok := s.compiled[name]
	if !ok {
		return fmt.Errorf("schema %q not registered", name)
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("response body is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match %s schema: %w", name, err)
	}
	return nil
}
