package llm

var eventFields = []string{"title", "type", "venue", "address", "date", "time", "description", "url", "image"}

// EventListSchema describes the structured output requested from the agent.
func EventListSchema() *Schema {
	properties := map[string]any{}
	for _, field := range eventFields {
		properties[field] = map[string]any{"type": "string"}
	}
	properties["image"] = map[string]any{"type": []any{"string", "null"}}

	required := make([]any, 0, len(eventFields))
	for _, field := range eventFields {
		required = append(required, field)
	}

	return &Schema{
		Name: "event_list",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"events": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"properties":           properties,
						"required":             required,
					},
				},
				"meta": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"count": map[string]any{"type": "integer"},
					},
					"required": []any{"count"},
				},
			},
			"required": []any{"events", "meta"},
		},
	}
}
