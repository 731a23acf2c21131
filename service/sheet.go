package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"catalogo-armazones/models"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// isSpreadsheet reports whether path is an Excel workbook
func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// readTable returns every record of a .csv file or of the first sheet of a workbook
func readTable(path string) ([][]string, error) {
	if isSpreadsheet(path) {
		return readWorkbook(path)
	}
	return readCSV(path)
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// sniffDelimiter picks ';' for exports that use it in the header line, ',' otherwise
func sniffDelimiter(data []byte) rune {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if models.NormalizeCell(v) != "" {
			return false
		}
	}
	return true
}

// LoadSheet loads product rows from a .csv or .xlsx file. The first non-blank
// record is the header; blank records and records without a SKU are skipped.
func LoadSheet(path string) ([]models.Row, error) {
	if !isSpreadsheet(path) && !isCSV(path) {
		return nil, fmt.Errorf("unsupported sheet format %q: use .csv or .xlsx", filepath.Ext(path))
	}
	records, err := readTable(path)
	if err != nil {
		return nil, err
	}

	var header []string
	var rows []models.Row
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		row := models.RowFromRecord(header, rec)
		if row.Get(models.FieldSKU) == "" {
			continue
		}
		rows = append(rows, row)
	}
	if header == nil {
		return nil, fmt.Errorf("sheet %s is empty", path)
	}
	return rows, nil
}
