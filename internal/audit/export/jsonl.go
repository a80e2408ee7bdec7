package export

import (
	"bytes"
	"fmt"
)

// renderJSONL serializes one record per line, newline-joined, preserving
// non-ASCII text as-is.
func renderJSONL(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	for i, r := range records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal jsonl record: %w", err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}
