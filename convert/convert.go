// Package convert bridges TONE to the other serialization formats a
// data pipeline is likely to already speak: JSON (TONE's own data model),
// YAML, and CSV for flat tabular data.
package convert

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tonefmt/tone"
)

// ToJSON decodes a TONE document and re-renders it as indented JSON.
func ToJSON(toneStr string) (string, error) {
	value, err := tone.Decode(toneStr)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJSON parses jsonStr and encodes it as TONE.
func FromJSON(jsonStr string) (string, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(jsonStr), &value); err != nil {
		return "", err
	}
	return tone.Encode(value)
}

// ToYAML decodes a TONE document and renders it as YAML.
func ToYAML(toneStr string) (string, error) {
	value, err := tone.Decode(toneStr)
	if err != nil {
		return "", err
	}
	b, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromYAML parses yamlStr and encodes it as TONE.
func FromYAML(yamlStr string) (string, error) {
	var value interface{}
	if err := yaml.Unmarshal([]byte(yamlStr), &value); err != nil {
		return "", err
	}
	return tone.Encode(value)
}

// ToCSV decodes a TONE document and renders it as CSV. The document must
// decode to an array of objects (or an object containing one array field,
// or a single object, which is treated as a one-row table) — anything
// else is an error, since CSV has no way to represent arbitrary nesting.
func ToCSV(toneStr string) (string, error) {
	value, err := tone.Decode(toneStr)
	if err != nil {
		return "", err
	}

	records, err := asRecords(value)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(records[0]))
	for k := range records[0] {
		header = append(header, k)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = fmt.Sprintf("%v", rec[k])
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func asRecords(value interface{}) ([]map[string]interface{}, error) {
	switch v := value.(type) {
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("convert: CSV conversion requires an array of objects")
			}
			records = append(records, m)
		}
		return records, nil
	case map[string]interface{}:
		for _, fv := range v {
			if arr, ok := fv.([]interface{}); ok {
				return asRecords(arr)
			}
		}
		return []map[string]interface{}{v}, nil
	default:
		return nil, fmt.Errorf("convert: CSV conversion requires tabular data, got %T", value)
	}
}

// FromCSV parses csvStr (with a header row) and encodes the rows as a
// tabular TONE array.
func FromCSV(csvStr string) (string, error) {
	r := csv.NewReader(bytes.NewReader([]byte(csvStr)))
	rows, err := r.ReadAll()
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return tone.Encode([]interface{}{})
	}

	header := rows[0]
	records := make([]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := tone.Object{}
		for i, field := range header {
			if i < len(row) {
				rec.Set(field, tone.StringValue(row[i]))
			}
		}
		records = append(records, tone.ObjectValue(rec))
	}
	return tone.Encode(tone.ArrayValue(toValueArray(records)))
}

func toValueArray(items []interface{}) tone.Array {
	arr := make(tone.Array, len(items))
	for i, v := range items {
		arr[i] = v.(tone.Value)
	}
	return arr
}
