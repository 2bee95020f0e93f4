package vectorstore

import (
	"fmt"
	"math"
)

// normalizeFilterValue reduces a filter value to string, int64 or bool.
// JSON numbers arrive as float64 and are accepted when integral.
func normalizeFilterValue(key string, v any) (any, error) {
	switch val := v.(type) {
	case string, bool, int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidFilter, key, val)
		}
		return int64(val), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T for %s", ErrInvalidFilter, v, key)
	}
}

// payloadFor flattens a point into the payload stored next to its vector.
func payloadFor(p Point) map[string]any {
	payload := make(map[string]any, len(p.Meta)+3)
	for k, v := range p.Meta {
		payload[k] = v
	}
	payload[KeyText] = p.Text
	payload[KeyDocumentID] = p.DocumentID
	payload[KeyChunkIndex] = int64(p.ChunkIndex)
	return payload
}

// hitFromPayload splits a stored payload back into a Hit.
func hitFromPayload(id string, distance float64, payload map[string]any) Hit {
	h := Hit{ID: id, Distance: distance, Meta: make(map[string]any, len(payload))}
	for k, v := range payload {
		switch k {
		case KeyText:
			h.Text, _ = v.(string)
		case KeyDocumentID:
			h.DocumentID, _ = v.(string)
		case KeyChunkIndex:
			switch n := v.(type) {
			case int64:
				h.ChunkIndex = int(n)
			case int:
				h.ChunkIndex = n
			case float64:
				h.ChunkIndex = int(n)
			}
		default:
			h.Meta[k] = v
		}
	}
	return h
}
