package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// renderCSV writes a header row taken from the first record's field names
// followed by one row per record. No records means zero bytes, not an empty
// header.
func renderCSV(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(records[0].Fields))
	for i, f := range records[0].Fields {
		header[i] = f.Name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		for i, f := range r.Fields {
			row[i] = f.Value
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
