package catalogschema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"loopplanner/internal/domain/survival"

	"github.com/invopop/jsonschema"
)

// ActionCatalog is the shape of actions.json: definitions keyed by action name.
type ActionCatalog map[string]survival.ActionDefinition

var itemListType = reflect.TypeOf(survival.ItemList{})

func Build() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		Mapper:                    mapType,
	}
	schema := reflector.Reflect(ActionCatalog{})
	schema.Title = "Action Catalog"
	schema.Description = "Validates action definitions in data/actions.json"
	return schema
}

// mapType covers types whose JSON decoding accepts more than their Go shape.
func mapType(t reflect.Type) *jsonschema.Schema {
	if t == itemListType {
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "string"},
				{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
		}
	}
	return nil
}

func JSON() ([]byte, error) {
	b, err := json.MarshalIndent(Build(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal action catalog schema: %w", err)
	}
	return append(b, '\n'), nil
}
