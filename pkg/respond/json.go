package respond

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a surrounding markdown code fence from a model response.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeObject parses raw as a single JSON object. When a full unmarshal fails
// because the model appended text after the closing brace, it retries with a
// streaming decoder that stops at the end of the first value.
func decodeObject(raw string) (map[string]any, error) {
	raw = stripFences(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return obj, nil
}

// remarshal converts the generic decoded object into a typed struct.
func remarshal(obj map[string]any, out any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// flattenChartWrapper lifts the fields of a nested chart_suggestion (or
// chart_suggestions) object to the top level. Existing top-level keys win.
func flattenChartWrapper(obj map[string]any) {
	for _, key := range []string{"chart_suggestion", "chart_suggestions"} {
		v, ok := obj[key]
		if !ok {
			continue
		}
		nested, ok := v.(map[string]any)
		if !ok {
			if list, isList := v.([]any); isList && len(list) > 0 {
				nested, ok = list[0].(map[string]any)
			}
		}
		if ok {
			for nk, nv := range nested {
				if _, exists := obj[nk]; !exists {
					obj[nk] = nv
				}
			}
		}
		delete(obj, key)
	}
}

// stripSQLFences removes a markdown code fence from around a SQL statement and
// drops a trailing semicolon.
func stripSQLFences(sql string) string {
	s := strings.TrimSpace(sql)
	if strings.HasPrefix(s, "```sql") {
		s = strings.TrimPrefix(s, "```sql")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, ";")
}
