// Package export renders audit query results into downloadable files. Each
// format renderer is a pure function over an ordered record list; the job
// runner feeds them from the audit store and writes results under the
// sandboxed export directory guarded by the safe path resolver.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"offboard/internal/audit"
	dErrors "offboard/pkg/domainerrors"
)

// Format selects an output renderer.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatXLSX  Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat validates a caller-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unsupported export format %q", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Field is one named column value. Records keep fields in a fixed order so
// every renderer emits columns identically.
type Field struct {
	Name  string
	Value string
}

// Record is one exportable row.
type Record struct {
	Fields []Field
}

// MarshalJSON emits the record as an object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FromEntries converts audit entries to export records with a stable column
// order.
func FromEntries(entries []audit.Entry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		actorID := ""
		if e.ActorID != nil {
			actorID = e.ActorID.String()
		}
		records = append(records, Record{Fields: []Field{
			{Name: "id", Value: strconv.FormatInt(e.ID, 10)},
			{Name: "action", Value: string(e.Action)},
			{Name: "status", Value: string(e.Status)},
			{Name: "username", Value: e.ActorUsername},
			{Name: "user_id", Value: actorID},
			{Name: "target_username", Value: e.TargetUsername},
			{Name: "target_registration", Value: e.TargetRegistration},
			{Name: "resource", Value: e.Resource},
			{Name: "message", Value: e.Message},
			{Name: "ip_address", Value: e.IPAddress},
			{Name: "user_agent", Value: e.UserAgent},
			{Name: "created_at", Value: e.CreatedAt.Format(time.RFC3339)},
		}})
	}
	return records
}

// Render produces the file contents for the records in the given format.
// Zero records is always valid input.
func Render(format Format, records []Record) ([]byte, error) {
	switch format {
	case FormatCSV:
		return renderCSV(records)
	case FormatJSONL:
		return renderJSONL(records)
	case FormatXLSX:
		return renderXLSX(records)
	case FormatPDF:
		return renderPDF(records)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// NewJobID generates an opaque export job identifier.
func NewJobID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Filename builds the download filename for a job.
func Filename(jobID string, format Format) string {
	return fmt.Sprintf("audit_logs_%s.%s", jobID, format.Extension())
}

// NewFilename generates a download filename with a fresh job id.
func NewFilename(format Format) string {
	return Filename(NewJobID(), format)
}
