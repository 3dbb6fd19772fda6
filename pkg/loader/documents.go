package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// DocumentsKey is the wrapper key a file may nest its documents under, as in
// TOML's [[documents]] tables.
const DocumentsKey = "documents"

// LoadDocuments reads path and decodes every record in it. The extension
// picks the format when it is known.
func LoadDocuments(path string) ([]ledger.DocumentInsert, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	docs, err := ParseDocuments(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// ParseDocuments decodes data into document inserts. Accepted shapes per
// parsed value: a single document object, a list of them, or an object with
// a "documents" list. Unknown keys are rejected.
func ParseDocuments(data []byte, format Format) ([]ledger.DocumentInsert, error) {
	values, err := LoadData(string(data), format)
	if err != nil {
		return nil, err
	}

	var records []any
	for _, v := range values {
		records = append(records, unwrap(v)...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no documents found")
	}

	out := make([]ledger.DocumentInsert, 0, len(records))
	for i, rec := range records {
		doc, err := decodeDocument(rec)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

func unwrap(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case map[string]any:
		if inner, ok := x[DocumentsKey]; ok && len(x) == 1 {
			if list, ok := inner.([]any); ok {
				return list
			}
			if list, ok := inner.([]map[string]any); ok {
				out := make([]any, len(list))
				for i, m := range list {
					out[i] = m
				}
				return out
			}
		}
		return []any{x}
	default:
		return []any{v}
	}
}

// decodeDocument re-encodes a generic record as JSON so that every input
// format goes through the same field names and amount/date parsing.
func decodeDocument(rec any) (ledger.DocumentInsert, error) {
	if _, ok := rec.(map[string]any); !ok {
		return ledger.DocumentInsert{}, fmt.Errorf("%w: expected an object, got %T", ledger.ErrValidation, rec)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return ledger.DocumentInsert{}, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc ledger.DocumentInsert
	if err := dec.Decode(&doc); err != nil {
		return ledger.DocumentInsert{}, fmt.Errorf("%w: %w", ledger.ErrValidation, err)
	}
	return doc, nil
}
