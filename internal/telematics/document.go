package telematics

// Document is an untyped upstream record. Interval and telemetry payloads
// vary by calculator configuration, so fields are resolved through ordered
// alias lookups instead of fixed struct tags. The untyped boundary stops
// here; everything past the normalizer is strongly typed.
type Document map[string]any

// containers are the nested objects a counter value may hide under,
// depending on how the calculator was configured upstream.
var containers = []string{"counters", "properties", "value"}

// Lookup resolves key at the top level first, then inside the known nested
// containers.
func (d Document) Lookup(key string) (any, bool) {
	if v, ok := d[key]; ok && v != nil {
		return v, true
	}
	for _, c := range containers {
		if sub, ok := d[c].(map[string]any); ok {
			if v, ok := sub[key]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// FirstOf returns the value of the first key that resolves, or nil.
func (d Document) FirstOf(keys ...string) any {
	for _, key := range keys {
		if v, ok := d.Lookup(key); ok {
			return v
		}
	}
	return nil
}

// FloatOf resolves the first present key as a float64, falling back to def.
func (d Document) FloatOf(def float64, keys ...string) float64 {
	v := d.FirstOf(keys...)
	if v == nil {
		return def
	}
	f, ok := asFloat(v)
	if !ok {
		return def
	}
	return f
}

// FloatPtr resolves the first present key as a *float64, or nil when absent.
func (d Document) FloatPtr(keys ...string) *float64 {
	v := d.FirstOf(keys...)
	if v == nil {
		return nil
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// Int64Of resolves the first present key as an int64.
func (d Document) Int64Of(keys ...string) (int64, bool) {
	for _, key := range keys {
		if v, ok := d.Int64(key); ok {
			return v, true
		}
	}
	return 0, false
}

// Int64 resolves key as an int64.
func (d Document) Int64(key string) (int64, bool) {
	v, ok := d.Lookup(key)
	if !ok {
		return 0, false
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// String resolves key as a string.
func (d Document) String(key string) (string, bool) {
	v, ok := d.Lookup(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Sub returns a nested object, or nil.
func (d Document) Sub(key string) Document {
	if sub, ok := d[key].(map[string]any); ok {
		return Document(sub)
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
