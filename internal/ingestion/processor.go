package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dataspeak/backend/internal/storage/models"
	"github.com/dataspeak/backend/internal/storage/sqlite"
	"github.com/dataspeak/backend/pkg/logger"
)

// numericSampleSize bounds how many rows the type sniffer inspects per
// column before committing to REAL or TEXT.
const numericSampleSize = 100

type Processor struct {
	db *sqlite.Client
}

type Summary struct {
	Table    string   `json:"table"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}

func NewProcessor(db *sqlite.Client) *Processor {
	return &Processor{db: db}
}

// ProcessCSV loads a CSV stream into a queryable dataset table. Header
// names are normalized to the snake_case form the classifier resolves
// column references against.
func (p *Processor) ProcessCSV(r io.Reader, table string) (*Summary, error) {
	logger.Info("Processing dataset", zap.String("table", table))

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = normalizeColumn(name)
		if columns[i] == "" {
			return nil, fmt.Errorf("csv header column %d is empty", i+1)
		}
	}

	var raw [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if len(record) != len(columns) {
			return nil, fmt.Errorf("csv row %d has %d fields, expected %d", len(raw)+2, len(record), len(columns))
		}
		raw = append(raw, record)
	}

	numeric := sniffNumeric(columns, raw)

	if err := p.db.CreateDatasetTable(table, columns, numeric); err != nil {
		return nil, fmt.Errorf("failed to create dataset table: %w", err)
	}

	rows := make([][]interface{}, len(raw))
	for i, record := range raw {
		row := make([]interface{}, len(record))
		for j, field := range record {
			if numeric[columns[j]] {
				v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
				if err != nil {
					row[j] = nil
				} else {
					row[j] = v
				}
			} else {
				row[j] = field
			}
		}
		rows[i] = row
	}

	if err := p.db.InsertDatasetRows(table, columns, rows); err != nil {
		return nil, fmt.Errorf("failed to load dataset rows: %w", err)
	}

	info := &models.DatasetInfo{
		Table:     table,
		Columns:   columns,
		RowCount:  len(rows),
		CreatedAt: time.Now(),
	}
	if err := p.db.RecordDataset(info); err != nil {
		return nil, fmt.Errorf("failed to record dataset: %w", err)
	}

	logger.Info("Dataset loaded",
		zap.String("table", table),
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(rows)),
	)

	return &Summary{Table: table, Columns: columns, RowCount: len(rows)}, nil
}

// sniffNumeric marks a column REAL only when every sampled non-empty
// value parses as a number. Empty columns stay TEXT.
func sniffNumeric(columns []string, rows [][]string) map[string]bool {
	numeric := make(map[string]bool, len(columns))

	for j, col := range columns {
		seen := false
		isNumeric := true

		for i, row := range rows {
			if i >= numericSampleSize {
				break
			}
			field := strings.TrimSpace(row[j])
			if field == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				isNumeric = false
				break
			}
		}

		numeric[col] = seen && isNumeric
	}

	return numeric
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimRight(b.String(), "_")
}
