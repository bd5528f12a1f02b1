package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
)

// DataReader reads CSV and XLSX files into typed tables
type DataReader struct {
	config  ReaderConfig
	coercer *TypeCoercer
}

// NewDataReader creates a reader with the given configuration
func NewDataReader(config ReaderConfig) *DataReader {
	if config.Sheet == "" {
		config.Sheet = DefaultSheet
	}
	return &DataReader{config: config, coercer: NewTypeCoercer(config.Coercion)}
}

// Read implements ports.TableReader. The file type follows the extension:
// .csv is comma separated, anything else is opened as a workbook.
func (r *DataReader) Read(ctx context.Context, path string) (*dataset.Table, error) {
	fileType := fileTypeOf(path)
	log.Printf("[DataReader] Starting to read %s file: %s", fileType, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file %s", core.ErrNotFound, strings.ToUpper(fileType), path)
	}

	var rows [][]string
	var err error
	switch fileType {
	case "csv":
		rows, err = readCSV(path)
	default:
		rows, err = r.readSheet(path)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.Build(name, rows)
}

func fileTypeOf(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

func (r *DataReader) readSheet(path string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.Sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.config.Sheet,
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// Build turns raw rows into a table, inferring each column's kind unless
// the configuration forces it. Short rows are padded with missing cells.
func (r *DataReader) Build(name string, rows [][]string) (*dataset.Table, error) {
	headers, body, err := r.split(rows)
	if err != nil {
		return nil, err
	}

	missingTokens := make(map[string]bool, len(r.config.MissingTokens))
	for _, tok := range r.config.MissingTokens {
		missingTokens[tok] = true
	}

	columns := make([]*dataset.Column, len(headers))
	for j, header := range headers {
		cells := make([]string, len(body))
		missing := make([]bool, len(body))
		for i, row := range body {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
			missing[i] = j >= len(row) || missingTokens[cells[i]]
		}

		kind, forced := r.config.Kinds[header]
		if !forced {
			kind = r.coercer.Infer(r.coercer.Analyze(cells, missing))
		}
		columns[j] = r.coercer.Build(header, kind, cells, missing)
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)", name, len(headers), len(body))
	return dataset.NewTable(name, columns...)
}

func (r *DataReader) split(rows [][]string) ([]string, [][]string, error) {
	if r.config.NoHeader {
		if len(rows) == 0 {
			return nil, nil, fmt.Errorf("%w: file has no data rows", core.ErrInvalidTable)
		}
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		headers := make([]string, width)
		for j := range headers {
			headers[j] = fmt.Sprintf("attribute%d", j)
		}
		return headers, rows, nil
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("%w: file must have at least a header row and one data row", core.ErrInvalidTable)
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, rows[1:], nil
}
