// Package schema checks the shape of submitted registration records against an
// embedded JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"conferencereg/internal/domain"
)

//go:embed registration.schema.json
var registrationSchema []byte

const schemaURL = "registration.schema.json"

type recordValidator struct {
	schema *jsonschema.Schema
}

// NewRecordValidator compiles the embedded registration schema.
func NewRecordValidator() (domain.RecordValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(registrationSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &recordValidator{schema: s}, nil
}

// Validate returns a *domain.ValidationError naming the first offending location.
func (v *recordValidator) Validate(rec domain.Record) error {
	// the validator switches on map[string]interface{}, not on named map types
	err := v.schema.Validate(map[string]any(rec))
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return domain.NewValidationError(domain.ReasonSchema, "Invalid registration data.")
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return domain.NewValidationError(domain.ReasonSchema, fmt.Sprintf("Invalid registration data at %s: %s", loc, ve.Message))
}
