package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// FirstArray returns the string array stored under the first key of a JSON
// object, where "first" means document order.
func FirstArray(data []byte) ([]string, error) {
	if !json.Valid(data) {
		return nil, errors.New("response is not valid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("response is not a JSON object")
	}
	if !dec.More() {
		return nil, errors.New("response object has no keys")
	}

	keyTok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	key, _ := keyTok.(string)

	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, fmt.Errorf("value of %q is null", key)
	}

	var items []string
	if err := json.Unmarshal(value, &items); err != nil {
		return nil, fmt.Errorf("value of %q is not a string array: %w", key, err)
	}
	return items, nil
}

// Indent re-serializes a JSON document with two-space indentation. The
// output matches a browser round trip through JSON.parse and
// JSON.stringify: numbers take their shortest form, a repeated key keeps its
// first position with its last value, and array-index keys sort first.
func Indent(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		return "", errors.New("invalid JSON document")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, v, ""); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// object keeps member order as first seen
type object struct {
	keys   []string
	values map[string]any
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{values: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := obj.values[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = val
		}
		_, err := dec.Token()
		return obj, err
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		_, err := dec.Token()
		return arr, err
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func writeValue(buf *bytes.Buffer, v any, indent string) error {
	inner := indent + "  "

	switch t := v.(type) {
	case *object:
		if len(t.keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, key := range orderedKeys(t.keys) {
			buf.WriteString(inner)
			writeString(buf, key)
			buf.WriteString(": ")
			if err := writeValue(buf, t.values[key], inner); err != nil {
				return err
			}
			if i < len(t.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "}")
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range t {
			buf.WriteString(inner)
			if err := writeValue(buf, item, inner); err != nil {
				return err
			}
			if i < len(t)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "]")
	case json.Number:
		return writeNumber(buf, t)
	case string:
		writeString(buf, t)
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected JSON token %T", v)
	}
	return nil
}

// writeNumber prints n as a float64 the way ES2015 does. Values outside the
// float64 range become null.
func writeNumber(buf *bytes.Buffer, n json.Number) error {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		if math.IsInf(f, 0) {
			buf.WriteString("null")
			return nil
		}
		return err
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// orderedKeys puts array-index keys first in numeric order, then the rest in
// insertion order
func orderedKeys(keys []string) []string {
	var index, named []string
	for _, k := range keys {
		if isArrayIndex(k) {
			index = append(index, k)
		} else {
			named = append(named, k)
		}
	}
	sort.SliceStable(index, func(i, j int) bool {
		a, _ := strconv.ParseUint(index[i], 10, 32)
		b, _ := strconv.ParseUint(index[j], 10, 32)
		return a < b
	})
	return append(index, named...)
}

func isArrayIndex(k string) bool {
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 32)
	return err == nil && n < math.MaxUint32
}
