package ingester

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"nepremicnine-backend/internal/models"
)

// readStagingCSV reads one register CSV and projects it onto the staging
// table's column set. Headers are lowercased; columns the table does not
// know are dropped, known columns the CSV lacks stay absent (the staging
// column defaults to NULL). Empty cells become NULL so the SQL transforms
// only deal with one missing-value representation.
func readStagingCSV(path, table string) (columns []string, rows [][]any, err error) {
	allowed := models.StagingColumns(table)
	if allowed == nil {
		return nil, nil, fmt.Errorf("unknown staging table %s", table)
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1

	header, err := rd.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	// indexes[i] is the CSV field position of columns[i].
	var indexes []int
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if allowedSet[name] {
			columns = append(columns, name)
			indexes = append(indexes, i)
		}
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("no known columns in %s header", table)
	}

	for {
		record, err := rd.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make([]any, len(columns))
		for i, pos := range indexes {
			if pos >= len(record) {
				continue
			}
			if v := strings.TrimSpace(record[pos]); v != "" {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}
