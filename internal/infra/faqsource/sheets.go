package faqsource

import (
	"context"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

// DefaultWorksheet is the worksheet holding the curated question/answer pairs.
const DefaultWorksheet = "FAQ_DB"

// ValuesReader is the part of the sheets client used to read a worksheet.
type ValuesReader interface {
	Values(ctx context.Context, sheet string) ([][]string, error)
}

// SheetSource reads the knowledge base from a Google Sheets worksheet.
type SheetSource struct {
	client ValuesReader
	sheet  string
}

// NewSheetSource constructs a worksheet source.
func NewSheetSource(client ValuesReader, sheet string) *SheetSource {
	if sheet == "" {
		sheet = DefaultWorksheet
	}
	return &SheetSource{client: client, sheet: sheet}
}

// Rows implements faq.Source.
func (s *SheetSource) Rows(ctx context.Context) ([][]string, error) {
	return s.client.Values(ctx, s.sheet)
}

var _ faq.Source = (*SheetSource)(nil)
