package item

import "encoding/json"

// stripReserved removes the structural keys persistableAttrs embeds in the
// data blob, leaving only user attributes for an Item's in-memory attrs
// map (Get/Set resolve structural names through dedicated fields instead).
func stripReserved(attrs map[string]any) map[string]any {
	for k := range reserved {
		delete(attrs, k)
	}
	return attrs
}

func unmarshalAttrs(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	return attrs, nil
}
