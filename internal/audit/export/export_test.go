package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"offboard/internal/audit"
)

func sampleRecords(n int) []Record {
	entries := make([]audit.Entry, 0, n)
	for i := 0; i < n; i++ {
		actorID := uuid.New()
		entries = append(entries, audit.Entry{
			ID:            int64(i + 1),
			Action:        audit.ActionSystemLogin,
			Status:        audit.StatusSuccess,
			ActorUsername: "alice",
			ActorID:       &actorID,
			Message:       "Login successful",
			IPAddress:     "10.0.0.1",
			CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		})
	}
	return FromEntries(entries)
}

type RenderSuite struct {
	suite.Suite
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func (s *RenderSuite) TestParseFormat() {
	for _, in := range []string{"csv", "CSV", " jsonl ", "xlsx", "pdf"} {
		_, err := ParseFormat(in)
		s.NoError(err, in)
	}
	_, err := ParseFormat("exe")
	s.Error(err)
	_, err = ParseFormat("")
	s.Error(err)
}

func (s *RenderSuite) TestEmptyInputNeverFails() {
	for _, format := range []Format{FormatCSV, FormatJSONL, FormatXLSX, FormatPDF} {
		s.Run(string(format), func() {
			data, err := Render(format, nil)
			s.Require().NoError(err)
			if format == FormatCSV || format == FormatJSONL {
				s.Empty(data)
			} else {
				s.NotEmpty(data)
			}
		})
	}
}

func (s *RenderSuite) TestCSVRoundTrip() {
	records := sampleRecords(5)

	data, err := Render(FormatCSV, records)
	s.Require().NoError(err)

	parsed, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(parsed, 6, "header plus five rows")

	header := parsed[0]
	s.Require().Len(header, len(records[0].Fields))
	for i, f := range records[0].Fields {
		s.Equal(f.Name, header[i])
	}
	for row, r := range records {
		for i, f := range r.Fields {
			s.Equal(f.Value, parsed[row+1][i])
		}
	}
}

func (s *RenderSuite) TestJSONLRoundTrip() {
	records := sampleRecords(3)

	data, err := Render(FormatJSONL, records)
	s.Require().NoError(err)

	lines := strings.Split(string(data), "\n")
	s.Require().Len(lines, 3)

	for i, line := range lines {
		var obj map[string]string
		s.Require().NoError(json.Unmarshal([]byte(line), &obj))
		for _, f := range records[i].Fields {
			s.Equal(f.Value, obj[f.Name])
		}
	}
}

func (s *RenderSuite) TestJSONLPreservesNonASCII() {
	records := []Record{{Fields: []Field{
		{Name: "message", Value: "Usuário desativado às 14h"},
	}}}

	data, err := Render(FormatJSONL, records)
	s.Require().NoError(err)
	s.Contains(string(data), "Usuário desativado às 14h")
	s.NotContains(string(data), `\u00`)
}

func (s *RenderSuite) TestJSONLFieldOrderIsStable() {
	records := sampleRecords(1)

	data, err := Render(FormatJSONL, records)
	s.Require().NoError(err)

	line := string(data)
	prev := -1
	for _, f := range records[0].Fields {
		idx := strings.Index(line, `"`+f.Name+`"`)
		s.Require().Greater(idx, prev, "field %s out of order", f.Name)
		prev = idx
	}
}

func (s *RenderSuite) TestFromEntriesStringifiesEverything() {
	actorID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	records := FromEntries([]audit.Entry{{
		ID:        7,
		Action:    audit.ActionExportAuditLogs,
		Status:    audit.StatusSuccess,
		ActorID:   &actorID,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}})

	s.Require().Len(records, 1)
	byName := map[string]string{}
	for _, f := range records[0].Fields {
		byName[f.Name] = f.Value
	}
	s.Equal("7", byName["id"])
	s.Equal("export_audit_logs", byName["action"])
	s.Equal("11111111-2222-3333-4444-555555555555", byName["user_id"])
	s.Equal("2025-06-01T12:00:00Z", byName["created_at"])
	s.Equal("", byName["message"])
}

func (s *RenderSuite) TestNewFilename() {
	name := NewFilename(FormatXLSX)
	s.True(strings.HasPrefix(name, "audit_logs_"))
	s.True(strings.HasSuffix(name, ".xlsx"))
	s.NotEqual(name, NewFilename(FormatXLSX))
}
