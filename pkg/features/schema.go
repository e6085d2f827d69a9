package features

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// collectionSchema is the structural minimum accepted as a feature
// collection: an object with a features array of objects. Geometry and
// properties are checked per feature during decoding.
const collectionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["features"],
  "properties": {
    "features": {
      "type": "array",
      "items": { "type": "object" }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(collectionSchema)

// validateStructure checks raw collection bytes against collectionSchema.
func validateStructure(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCollection, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrMalformedCollection, strings.Join(msgs, "; "))
	}
	return nil
}
