// Package getsafe extracts typed values from decoded JSON payloads without
// panicking on absent or mistyped fields.
package getsafe

func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func Float64(payload map[string]any, key string) float64 {
	if v, ok := payload[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

func Metadata(payload map[string]any, key string) map[string]any {
	if v, ok := payload[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}
