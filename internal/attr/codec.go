package attr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// taggedValue is the persisted form of one attribute. The type tag keeps
// amounts and timestamps typed across a round-trip through the store.
type taggedValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalJSON encodes the map with per-value type tags.
func (m Map) MarshalJSON() ([]byte, error) {
	out := make(map[string]taggedValue, len(m))
	for k, v := range m {
		tv := taggedValue{Type: TypeOf(v).String()}
		switch TypeOf(v) {
		case TypeNumber:
			n, _ := asInt64(v)
			tv.Value = strconv.FormatInt(n, 10)
		case TypeTime:
			tv.Value = v.(time.Time).Format(time.RFC3339)
		default:
			tv.Value = stringify(v)
		}
		out[k] = tv
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a tagged map produced by MarshalJSON.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]taggedValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec := make(Map, len(raw))
	for k, tv := range raw {
		t, ok := NamedType(tv.Type)
		if !ok {
			return fmt.Errorf("attribute %q: unknown type %q", k, tv.Type)
		}
		switch t {
		case TypeNumber:
			n, err := strconv.ParseInt(tv.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
			dec[k] = n
		case TypeTime:
			ts, err := time.Parse(time.RFC3339, tv.Value)
			if err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
			dec[k] = ts
		default:
			dec[k] = tv.Value
		}
	}
	*m = dec
	return nil
}
