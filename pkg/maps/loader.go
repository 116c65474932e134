package maps

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed data/*.json
var mapFiles embed.FS

//go:embed tiles.schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func tileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("tiles.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// LoadDefault loads the embedded demo map.
func LoadDefault() (*Catalog, error) {
	data, err := mapFiles.ReadFile("data/default.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return LoadFromJSON(data)
}

// Load loads a tile catalog from a file. An empty path loads the embedded map.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON loads a catalog from JSON bytes.
func LoadFromJSON(data []byte) (*Catalog, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}

	s, err := tileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile tile schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	var raw map[string]RawTile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}

	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	return Process(raw), nil
}

// validate checks what the schema cannot: every route must point at a tile.
func validate(raw map[string]RawTile) error {
	for id, t := range raw {
		for _, r := range t.Routes {
			if r == id {
				return fmt.Errorf("tile %s routes to itself", id)
			}
			if _, ok := raw[r]; !ok {
				return fmt.Errorf("tile %s routes to unknown tile %s", id, r)
			}
		}
	}
	return nil
}
