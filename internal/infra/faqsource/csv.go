package faqsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// FileSource reads the knowledge base from a local CSV file with a header row.
type FileSource struct {
	path string
}

// NewFileSource constructs a CSV file source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Rows implements faq.Source.
func (s *FileSource) Rows(_ context.Context) ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base file: %w", err)
	}
	defer f.Close()
	return readCSV(f)
}

// readCSV parses a spreadsheet export. Ragged rows are allowed and a leading byte order
// mark is dropped.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse knowledge base csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

var _ faq.Source = (*FileSource)(nil)
