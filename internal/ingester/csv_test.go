package ingester

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "register.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestReadStagingCSV(t *testing.T) {
	t.Parallel()

	// BOM on the first header, mixed case, one unknown column, one empty
	// cell.
	content := "\ufeffID_POSLA,Vrsta_posla,neznano,Najemnina\n" +
		"101,1,x,550\n" +
		"102,,y,\n"

	columns, rows, err := readStagingCSV(writeTempCSV(t, content), "np_posel")
	if err != nil {
		t.Fatalf("readStagingCSV: %v", err)
	}

	wantCols := []string{"id_posla", "vrsta_posla", "najemnina"}
	if len(columns) != len(wantCols) {
		t.Fatalf("columns %v want %v", columns, wantCols)
	}
	for i := range wantCols {
		if columns[i] != wantCols[i] {
			t.Fatalf("columns %v want %v", columns, wantCols)
		}
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "101" || rows[0][1] != "1" || rows[0][2] != "550" {
		t.Fatalf("first row %v", rows[0])
	}
	if rows[1][1] != nil || rows[1][2] != nil {
		t.Fatalf("empty cells should be nil, got %v", rows[1])
	}
}

func TestReadStagingCSVUnknownTable(t *testing.T) {
	t.Parallel()

	if _, _, err := readStagingCSV("nonexistent.csv", "not_a_table"); err == nil {
		t.Fatal("expected error for unknown staging table")
	}
}

func TestReadStagingCSVNoKnownColumns(t *testing.T) {
	t.Parallel()

	path := writeTempCSV(t, "foo,bar\n1,2\n")
	if _, _, err := readStagingCSV(path, "np_posel"); err == nil {
		t.Fatal("expected error when no header column is known")
	}
}
