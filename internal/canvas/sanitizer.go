// Package canvas prepares project content blocks for persistence. The store
// rejects null fields and nested array values, so block metadata is flattened
// into scalars and JSON-encoded strings before every write.
package canvas

import (
	"encoding/json"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"

	"github.com/davidlopz/expotec-api/internal/models"
)

// SanitizeMetadata flattens a client-supplied metadata tree. Scalars pass
// through (whole floats become integers), nil values are dropped, and any
// composite value is stored as its canonical JSON encoding under the same
// key. The transform is total: no input shape produces an error.
func SanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if len(metadata) == 0 {
		return nil
	}

	out := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		if key == "" {
			continue
		}
		if clean, ok := sanitizeValue(value); ok {
			out[key] = clean
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeValue(value interface{}) (interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case string:
		return v, true
	case bool:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case float32:
		return normalizeFloat(float64(v)), true
	case float64:
		return normalizeFloat(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return v.String(), true
	default:
		// Composite or unknown shape: keep it as a canonical JSON string.
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(encoded), true
	}
}

func normalizeFloat(f float64) interface{} {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

// Cleaner strips unsafe HTML from text-bearing canvas blocks.
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner builds a cleaner with the UGC policy.
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.UGCPolicy()}
}

// CleanBlock sanitizes one block in place: metadata is flattened and, for
// text and heading blocks, the content is run through the HTML policy.
func (c *Cleaner) CleanBlock(block *models.ContentBlock) {
	block.Metadata = SanitizeMetadata(block.Metadata)
	switch block.Type {
	case models.BlockText, models.BlockHeading:
		block.Content = c.policy.Sanitize(block.Content)
	}
}
