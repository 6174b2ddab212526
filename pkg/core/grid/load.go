package grid

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// ErrUnreadable is returned when no worksheet grid can be produced from the input.
var ErrUnreadable = errors.New("no readable worksheet")

// PreferredSheet is the worksheet name Screener uses for the raw export.
const PreferredSheet = "Data Sheet"

// sheetMarkers identify a worksheet that carries a P&L block in column 0.
var sheetMarkers = []string{"PROFIT & LOSS", "P&L"}

// Load reads a workbook from r and returns the grid of the worksheet to analyse.
// The format is picked from the file extension, falling back to content sniffing.
func Load(r io.Reader, filename string) (*Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty upload: %w", ErrUnreadable)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(bytes.NewReader(data))
	case ".html", ".htm":
		return LoadHTML(bytes.NewReader(data))
	case ".csv":
		return LoadCSV(bytes.NewReader(data))
	}

	// Sniff: xlsx is a zip container, HTML exports start with a tag.
	switch {
	case bytes.HasPrefix(data, []byte("PK")):
		return LoadXLSX(bytes.NewReader(data))
	case bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")):
		return LoadHTML(bytes.NewReader(data))
	default:
		return LoadCSV(bytes.NewReader(data))
	}
}

// LoadXLSX opens an Excel workbook and returns the grid of the preferred sheet:
// "Data Sheet" if present, else the first sheet with a P&L marker in column 0,
// else the first sheet.
func LoadXLSX(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v: %w", err, ErrUnreadable)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", ErrUnreadable)
	}

	grids := make(map[string]*Grid, len(sheets))
	read := func(name string) (*Grid, error) {
		if g, ok := grids[name]; ok {
			return g, nil
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		g := fromTextRows(rows)
		grids[name] = g
		return g, nil
	}

	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), PreferredSheet) {
			return read(name)
		}
	}

	for _, name := range sheets {
		g, err := read(name)
		if err != nil {
			continue
		}
		if hasMarker(g) {
			return g, nil
		}
	}

	return read(sheets[0])
}

// LoadHTML reads the first <table> of an HTML export.
func LoadHTML(r io.Reader) (*Grid, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %v: %w", err, ErrUnreadable)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table in html export: %w", ErrUnreadable)
	}

	var rows [][]Cell
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var row []Cell
		tr.Find("td, th").Each(func(j int, td *goquery.Selection) {
			row = append(row, FromText(strings.TrimSpace(td.Text())))
		})
		rows = append(rows, row)
	})
	return New(rows), nil
}

// LoadCSV reads a comma separated export. Ragged records are accepted.
func LoadCSV(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %v: %w", err, ErrUnreadable)
	}
	return fromTextRows(records), nil
}

func fromTextRows(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		cells[i] = make([]Cell, len(r))
		for j, v := range r {
			cells[i][j] = FromText(v)
		}
	}
	return New(cells)
}

func hasMarker(g *Grid) bool {
	for r := 0; r < g.Rows(); r++ {
		label := strings.ToUpper(g.At(r, 0).Text())
		for _, m := range sheetMarkers {
			if strings.Contains(label, m) {
				return true
			}
		}
	}
	return false
}
