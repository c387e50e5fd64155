package ishares

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// Holding is one row of the fund's published holdings workbook.
type Holding struct {
	Ticker      string
	Name        string
	Sector      string
	AssetClass  string
	MarketValue float64
	Exchange    string
	Currency    string
}

// FindHoldingsLink scrapes the product page for the holdings download
// href. The export anchor carries the icon-xls-export class; older page
// revisions only mark it by the fileType query parameter.
func FindHoldingsLink(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse product page: %w", err)
	}

	if href, ok := doc.Find("a.icon-xls-export").First().Attr("href"); ok && href != "" {
		return href, nil
	}

	var fallback string
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "fileType=xls") {
			fallback = href
			return false
		}
		return true
	})
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("no holdings download link on product page")
}

// holdingsSheets are the sheet names tried before scanning the whole
// workbook for a header row.
var holdingsSheets = []string{"Holdings", "holdings"}

// ParseHoldings reads the holdings workbook and returns one Holding per
// constituent row. Rows above the header (fund metadata, as-of date) and
// footer disclaimers are skipped.
func ParseHoldings(path string) ([]Holding, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := holdingsRows(f)
	if err != nil {
		return nil, err
	}

	headerRow, columns := findHeader(rows)
	if headerRow == -1 {
		return nil, fmt.Errorf("could not find holdings header row")
	}
	for _, required := range []string{"ticker", "name"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("could not find required column: %s", required)
		}
	}

	cell := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var holdings []Holding
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]

		ticker := cell(row, "ticker")
		if ticker == "" || ticker == "-" {
			// A blank row after the constituents marks the footer.
			if len(holdings) > 0 {
				break
			}
			continue
		}
		if cell(row, "name") == "" {
			// Disclaimer text spills into the ticker column but the
			// rest of the row is empty.
			continue
		}

		holdings = append(holdings, Holding{
			Ticker:      ticker,
			Name:        cell(row, "name"),
			Sector:      cell(row, "sector"),
			AssetClass:  cell(row, "asset_class"),
			MarketValue: parseWorkbookNumber(cell(row, "market_value")),
			Exchange:    cell(row, "exchange"),
			Currency:    cell(row, "currency"),
		})
	}

	if len(holdings) == 0 {
		return nil, fmt.Errorf("holdings sheet contains no constituent rows")
	}
	return holdings, nil
}

// holdingsRows locates the sheet carrying the holdings table. Known
// sheet names are tried first, then every sheet is scanned for a row
// mentioning Ticker.
func holdingsRows(f *excelize.File) ([][]string, error) {
	for _, name := range holdingsSheets {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 0 {
			return rows, nil
		}
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if row, _ := findHeader(rows); row != -1 {
			return rows, nil
		}
	}

	return nil, fmt.Errorf("could not find holdings sheet in workbook")
}

// findHeader returns the index of the header row and the column map.
// The header is the first row containing both Ticker and Name.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}

		rowText := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(rowText, "ticker") || !strings.Contains(rowText, "name") {
			continue
		}

		columns := make(map[string]int)
		for j, header := range row {
			h := strings.ToLower(strings.TrimSpace(header))
			switch {
			case h == "ticker":
				columns["ticker"] = j
			case h == "name":
				columns["name"] = j
			case strings.Contains(h, "sector"):
				columns["sector"] = j
			case strings.Contains(h, "asset class"):
				columns["asset_class"] = j
			case strings.Contains(h, "market value"):
				columns["market_value"] = j
			case strings.Contains(h, "exchange"):
				columns["exchange"] = j
			case h == "currency" || strings.Contains(h, "market currency"):
				// Plain Currency preferred; some revisions only carry Market Currency.
				if _, ok := columns["currency"]; !ok || h == "currency" {
					columns["currency"] = j
				}
			}
		}

		if _, ok := columns["ticker"]; ok {
			return i, columns
		}
	}
	return -1, nil
}

// parseWorkbookNumber parses a numeric cell tolerant of thousands
// separators and a currency prefix ("$1,234,567.89" -> 1234567.89).
// Unparseable cells come back as 0.
func parseWorkbookNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
