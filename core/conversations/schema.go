package conversations

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

const schemaVersion = "http://json-schema.org/draft-07/schema#"

// MetadataSchema returns the JSON schema of the conversation metadata file.
func MetadataSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Conversation{})
	schema.Version = schemaVersion
	schema.Title = "Conversation"
	schema.Description = "Questions, answers and audio artifacts of one processed recording"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling schema: %w", err)
	}
	return data, nil
}
