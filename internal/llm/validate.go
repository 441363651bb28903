package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateJSONAgainstSchema checks the model's reply against the invoice
// schema map before anything downstream touches it. The check is structural
// only: a string-typed leaf may still hold garbage, but a number or a nested
// object where a string belongs is rejected here.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("reply is not valid JSON: %w", err)
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal invoice schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("register invoice schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.schema.json")
	if err != nil {
		return fmt.Errorf("compile invoice schema: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("reply does not match the invoice schema: %w", err)
	}
	return nil
}
