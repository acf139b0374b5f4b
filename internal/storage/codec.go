package storage

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo/internal/service"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var schemaFiles = map[string]string{
	KeySession:     "schemas/user.schema.json",
	KeyUsers:       "schemas/users.schema.json",
	KeyTasks:       "schemas/tasks.schema.json",
	KeyCredentials: "schemas/credentials.schema.json",
}

// schemas holds the compiled schema for each known key.
var schemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, len(schemaFiles))
	for key, path := range schemaFiles {
		data, err := schemaFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("storage: read embedded schema %s: %v", path, err))
		}
		compiler := jsonschema.NewCompiler()
		url := key + ".schema.json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			panic(fmt.Sprintf("storage: add schema %s: %v", path, err))
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("storage: compile schema %s: %v", path, err))
		}
		out[key] = schema
	}
	return out
}

// Validate checks a raw document against the schema registered for key.
// Keys without a schema are only checked for well-formed JSON.
func Validate(key string, data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, ok := schemas[key]
	if !ok {
		return nil
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError reduces a jsonschema error tree to its first leaf.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return errors.New(ve.Message)
	}
	return fmt.Errorf("%s: %s", loc, ve.Message)
}

// LoadJSON reads key, validates it and unmarshals it into v.
// Returns false with v untouched when the key is absent.
func LoadJSON(ctx context.Context, repo Repository, key string, v any) (bool, error) {
	data, err := repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, &service.StorageError{Op: "read", Key: key, Err: err}
	}
	if err := Validate(key, data); err != nil {
		return false, &service.StorageError{Op: "decode", Key: key, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, &service.StorageError{Op: "decode", Key: key, Err: err}
	}
	return true, nil
}

// SaveJSON marshals v and writes it under key.
func SaveJSON(ctx context.Context, repo Repository, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &service.StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := repo.Put(ctx, key, data); err != nil {
		return &service.StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Remove deletes key, wrapping failures as storage errors.
func Remove(ctx context.Context, repo Repository, key string) error {
	if err := repo.Delete(ctx, key); err != nil {
		return &service.StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
