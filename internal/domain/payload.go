package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is a single key/value pair of a loosely-shaped service object.
type Field struct {
	Key   string
	Value interface{}
}

// Fields is a JSON object that keeps the key order it was received in.
// Numbers are decoded as json.Number so large amounts stay exact.
type Fields []Field

// Get returns the value stored under key. A null value counts as absent.
func (f Fields) Get(key string) (interface{}, bool) {
	for _, field := range f {
		if field.Key == key {
			if field.Value == nil {
				return nil, false
			}
			return field.Value, true
		}
	}
	return nil, false
}

// GetString returns the formatted value stored under key.
func (f Fields) GetString(key string) (string, bool) {
	v, ok := f.Get(key)
	if !ok {
		return "", false
	}
	return FormatValue(v), true
}

// Keys lists the keys in received order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, field := range f {
		keys = append(keys, field.Key)
	}
	return keys
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for i, field := range f {
		out[i] = Field{Key: field.Key, Value: cloneValue(field.Value)}
	}
	return out
}

// MarshalJSON writes the object with keys in stored order.
func (f Fields) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, preserving key order.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	out := Fields{}
	index := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if i, seen := index[key]; seen {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, Field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// ResultPayload is the structured answer returned for one submitted question.
type ResultPayload struct {
	Query           string   `json:"query,omitempty"`
	QueryParameters Fields   `json:"query_parameters,omitempty"`
	Data            []Fields `json:"data"`
	Insights        string   `json:"insights,omitempty"`
}

// Clone returns an independent deep copy of the payload.
func (p ResultPayload) Clone() ResultPayload {
	out := ResultPayload{
		Query:           p.Query,
		QueryParameters: p.QueryParameters.Clone(),
		Insights:        p.Insights,
	}
	if p.Data != nil {
		out.Data = make([]Fields, len(p.Data))
		for i, rec := range p.Data {
			out.Data[i] = rec.Clone()
		}
	}
	return out
}

// HasData reports whether at least one record is present.
func (p ResultPayload) HasData() bool {
	return len(p.Data) > 0
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case Fields, map[string]interface{}, []interface{}:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	case Fields:
		return val.Clone()
	default:
		return val
	}
}
