package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PDFSuite struct {
	suite.Suite
}

func TestPDFSuite(t *testing.T) {
	suite.Run(t, new(PDFSuite))
}

func (s *PDFSuite) TestProducesValidDocument() {
	data, err := Render(FormatPDF, sampleRecords(3))
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(data, []byte("%PDF-")))
}

func (s *PDFSuite) TestEmptyProducesTitledReport() {
	data, err := Render(FormatPDF, nil)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(data, []byte("%PDF-")))
	s.NotEmpty(data)
}

func (s *PDFSuite) TestManyRowsSpanPages() {
	small, err := Render(FormatPDF, sampleRecords(1))
	s.Require().NoError(err)
	large, err := Render(FormatPDF, sampleRecords(200))
	s.Require().NoError(err)

	// Landscape A4 fits well under 200 rows per page, so the large document
	// must carry more page objects than the single-row one.
	marker := []byte("/Type /Page")
	s.Greater(bytes.Count(large, marker), bytes.Count(small, marker))
}

func (s *PDFSuite) TestTruncate() {
	s.Equal("short", truncate("short", 10))
	s.Equal("exactlyten", truncate("exactlyten", 10))
	s.Equal("0123456...", truncate("0123456789x", 10))
}
