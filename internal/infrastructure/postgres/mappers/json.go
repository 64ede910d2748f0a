package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return nil
	}
	if m, ok := v.(map[string]string); ok && len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func fromJSONMap(j datatypes.JSON) map[string]any {
	if len(j) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(j, &m); err != nil {
		return nil
	}
	return m
}

func fromJSONStringMap(j datatypes.JSON) map[string]string {
	if len(j) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(j, &m); err != nil {
		return nil
	}
	return m
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
