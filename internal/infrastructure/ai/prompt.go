// Package ai holds what the recipe structuring providers share: the prompt
// and the parsing of model output
package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StructurePrompt is the system prompt asking a model for a recipe payload
const StructurePrompt = `You extract recipes from free text. Respond with ONLY a JSON object, no markdown, using these keys when the text provides them:
{
  "title": "Recipe name",
  "variationNote": "what differs from the original, if the text describes a variation",
  "objective": "short description",
  "ingredients": [{"name": "flour", "quantity": 200, "unit": "g", "note": "sifted"}],
  "steps": [{"order": 1, "instruction": "..."}],
  "duration": {"prep": 10, "cook": 20},
  "portions": 4,
  "tags": ["french"],
  "equipment": ["oven"],
  "dishType": "dessert"
}
Omit unknown fields instead of inventing values. Keep the language of the input.`

// ParsePayload extracts the outermost JSON object; models sometimes wrap
// it in prose or code fences
func ParsePayload(response string) (map[string]any, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(response[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return payload, nil
}
