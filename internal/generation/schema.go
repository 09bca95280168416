package generation

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed reply_schema.json
var replySchemaJSON string

// validateReplySchema checks a model reply against the embedded JSON schema.
// A schema miss means the model ignored the output contract, which is a
// generation failure, not a validation-gate failure.
func validateReplySchema(reply string) error {
	schemaLoader := gojsonschema.NewStringLoader(replySchemaJSON)
	documentLoader := gojsonschema.NewStringLoader(reply)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &GenerationError{
			Stage: "parse",
			Cause: fmt.Errorf("model reply is not valid JSON: %w", err),
		}
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &GenerationError{
			Stage: "schema",
			Cause: fmt.Errorf("model reply does not match schema: %s", strings.Join(details, "; ")),
		}
	}
	return nil
}
