package sheets

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"strings"
	"unified-price-bot/internal/pricelist"
)

// Client wraps the Google Sheets service for read-only exports.
type Client struct {
	service *sheets.Service
}

// NewClient builds a sheets client from a service-account credentials file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "could not create sheets service")
	}
	return &Client{service: service}, nil
}

// Export reads every worksheet's values from a spreadsheet. Values come back
// unformatted so numeric cells stay numeric.
func (c *Client) Export(ctx context.Context, spreadsheetID string) (*pricelist.Snapshot, error) {
	meta, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title,sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "could not read spreadsheet %s", spreadsheetID)
	}

	snap := &pricelist.Snapshot{}
	if meta.Properties != nil {
		snap.Title = meta.Properties.Title
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties == nil {
			continue
		}
		title := sheet.Properties.Title
		values, err := c.readValues(ctx, spreadsheetID, title)
		if err != nil {
			return nil, err
		}
		snap.Sheets = append(snap.Sheets, pricelist.Sheet{Title: title, Rows: values})
	}

	log.Debugf("exported %d sheet(s) from %q", len(snap.Sheets), snap.Title)
	return snap, nil
}

// quoteSheetTitle wraps a worksheet title for A1 notation, doubling any
// single quotes the title itself contains.
func quoteSheetTitle(title string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(title, "'", "''"))
}

func (c *Client) readValues(ctx context.Context, spreadsheetID, title string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, quoteSheetTitle(title)).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "could not read sheet %q of spreadsheet %s", title, spreadsheetID)
	}
	return resp.Values, nil
}
