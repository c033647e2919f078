package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Cell is a named value inside a row. Value is one of float64, string,
// []string or nil.
type Cell struct {
	Key   string
	Value any
}

// Row keeps its cells in insertion order so series and columns come out in the
// order the producer wrote them.
type Row []Cell

// NewRow builds a row from alternating key/value arguments.
// Integers are widened to float64; unsupported values panic because rows are
// built from literals.
func NewRow(kv ...any) Row {
	if len(kv)%2 != 0 {
		panic("analytics: NewRow needs key/value pairs")
	}

	row := make(Row, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("analytics: row key %v is not a string", kv[i]))
		}
		value, err := normalizeValue(kv[i+1])
		if err != nil {
			panic(fmt.Sprintf("analytics: row key %s: %v", key, err))
		}
		row = append(row, Cell{Key: key, Value: value})
	}
	return row
}

// Keys returns the cell keys in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, cell := range r {
		keys[i] = cell.Key
	}
	return keys
}

// Has reports whether the row carries key, even with a null value.
func (r Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Get returns the raw value for key.
func (r Row) Get(key string) (any, bool) {
	for _, cell := range r {
		if cell.Key == key {
			return cell.Value, true
		}
	}
	return nil, false
}

// Number returns the numeric value for key.
func (r Row) Number(key string) (float64, bool) {
	value, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := value.(float64)
	return n, ok
}

// Text returns the string value for key.
func (r Row) Text(key string) (string, bool) {
	value, ok := r.Get(key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// Format renders a cell value for display.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// MarshalJSON writes the row as an object with keys in row order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cell.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(cell.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", cell.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object and keeps the source key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	row := make(Row, 0, 8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected row key %v", tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		value, err := normalizeValue(raw)
		if err != nil {
			return fmt.Errorf("row key %s: %w", key, err)
		}

		replaced := false
		for i := range row {
			if row[i].Key == key {
				row[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			row = append(row, Cell{Key: key, Value: value})
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Format(item)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
