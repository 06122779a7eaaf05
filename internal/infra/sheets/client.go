// Package sheets reads and appends worksheet rows through the Google Sheets v4 API.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const defaultTimeout = 10 * time.Second

// Scope grants read/write access to spreadsheets.
const Scope = sheetsapi.SpreadsheetsScope

// Client reads and appends worksheet rows of a single spreadsheet.
type Client struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	timeout       time.Duration
}

// NewClient builds a client from API options. An empty baseURL keeps the public endpoint.
func NewClient(ctx context.Context, baseURL, spreadsheetID string, timeout time.Duration, opts ...option.ClientOption) (*Client, error) {
	if base := strings.TrimSpace(baseURL); base != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(base, "/")+"/"))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
	}, nil
}

// NewServiceAccountClient authorises requests with a service account key (the JSON
// downloaded from the Google Cloud console).
func NewServiceAccountClient(ctx context.Context, baseURL, spreadsheetID string, credentialsJSON []byte, timeout time.Duration) (*Client, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// token fetches go through the same bounded client
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	return NewClient(ctx, baseURL, spreadsheetID, timeout, option.WithTokenSource(conf.TokenSource(tokenCtx)))
}

// Values returns every populated row of the worksheet, header included.
func (c *Client) Values(ctx context.Context, sheet string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.values.Get(c.spreadsheetID, sheetRange(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return cellStrings(resp.Values), nil
}

// Append adds one row after the last populated row of the worksheet.
func (c *Client) Append(ctx context.Context, sheet string, row []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := c.values.Append(c.spreadsheetID, sheetRange(sheet), &sheetsapi.ValueRange{Values: [][]any{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to sheet %q: %w", sheet, err)
	}
	return nil
}

// sheetRange quotes worksheet titles that are not plain identifiers.
func sheetRange(sheet string) string {
	if strings.ContainsAny(sheet, " '!:") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet
}

func cellStrings(values [][]any) [][]string {
	rows := make([][]string, 0, len(values))
	for _, raw := range values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			switch val := cell.(type) {
			case string:
				row[i] = val
			case nil:
				row[i] = ""
			default:
				row[i] = fmt.Sprint(val)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
