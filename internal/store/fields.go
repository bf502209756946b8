package store

import (
	"time"

	"github.com/jooba/jooba/internal/model"
)

// applyFields merges recognized mutable fields into a product. Unknown
// keys are ignored; the store never widens a product's shape.
func applyFields(p *model.Product, fields map[string]any) {
	for key, value := range fields {
		switch key {
		case model.FieldName:
			if v, ok := value.(string); ok {
				p.Name = v
			}
		case model.FieldPrice:
			if v, ok := toFloat(value); ok {
				p.Price = v
			}
		case model.FieldCategory:
			if v, ok := value.(string); ok {
				p.Category = v
			}
		case model.FieldDescription:
			if v, ok := value.(string); ok {
				p.Description = v
			}
		case model.FieldUpdatedAt:
			if v, ok := toTime(value); ok {
				p.UpdatedAt = v
			}
		}
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
