package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/outbreaklab/go-outbreak/epidemic"
)

func TestReadInitialTableReader(t *testing.T) {
	csv := "susceptible,exposed,infected,recovered\n990,6,3,1\n"
	table, err := ReadInitialTableReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadInitialTableReader failed: %v", err)
	}

	want := map[string]float64{
		epidemic.Susceptible: 990,
		epidemic.Exposed:     6,
		epidemic.Infectious:  3,
		epidemic.Recovered:   1,
	}
	if len(table) != len(want) {
		t.Fatalf("Expected %d entries, got %v", len(want), table)
	}
	for label, v := range want {
		if table[label] != v {
			t.Errorf("%s = %f, want %f", label, table[label], v)
		}
	}
}

func TestReadInitialTableShortLabels(t *testing.T) {
	csv := "S,I,R\n995,4,1\n"
	table, err := ReadInitialTableReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadInitialTableReader failed: %v", err)
	}
	if table[epidemic.Susceptible] != 995 || table[epidemic.Infectious] != 4 {
		t.Errorf("Short labels not mapped: %v", table)
	}
}

func TestReadInitialTableUnknownColumn(t *testing.T) {
	csv := "susceptible,zombies\n990,10\n"
	_, err := ReadInitialTableReader(strings.NewReader(csv))
	if err == nil {
		t.Fatal("Expected error for unknown column")
	}
	if !strings.Contains(err.Error(), "zombies") {
		t.Errorf("Error should name the column: %v", err)
	}
}

func TestReadInitialTableMissingData(t *testing.T) {
	_, err := ReadInitialTableReader(strings.NewReader("susceptible,infected\n"))
	if err == nil {
		t.Fatal("Expected error for missing data row")
	}
}

func TestReadInitialTableBadCount(t *testing.T) {
	_, err := ReadInitialTableReader(strings.NewReader("susceptible,infected\n990,many\n"))
	if err == nil {
		t.Fatal("Expected error for non-numeric count")
	}
}

func TestReadInitialTableDuplicateColumn(t *testing.T) {
	_, err := ReadInitialTableReader(strings.NewReader("s,susceptible\n500,500\n"))
	if err == nil {
		t.Fatal("Expected error for duplicate compartment column")
	}
}

func TestReadInitialTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "initial.csv")
	if err := os.WriteFile(path, []byte("susceptible,infected\n999,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := ReadInitialTable(path)
	if err != nil {
		t.Fatalf("ReadInitialTable failed: %v", err)
	}
	if table[epidemic.Infectious] != 1 {
		t.Errorf("Expected I=1, got %f", table[epidemic.Infectious])
	}

	if _, err := ReadInitialTable(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteSeriesCSV(t *testing.T) {
	var buf bytes.Buffer
	t0 := []float64{0, 1}
	u := []map[string]float64{
		{"S": 999, "I": 1},
		{"S": 995, "I": 5},
	}
	if err := WriteSeriesCSV(&buf, t0, []string{"S", "I"}, u); err != nil {
		t.Fatalf("WriteSeriesCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "t,S,I" {
		t.Errorf("Bad header: %s", lines[0])
	}
	if lines[1] != "0,999,1" {
		t.Errorf("Bad first row: %s", lines[1])
	}
}
