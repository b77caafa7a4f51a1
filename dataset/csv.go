// Package dataset reads initial compartment tables from CSV files. A
// table file carries one header row of compartment column names and one
// data row of counts; extra rows are ignored so exports with trailing
// aggregates still load.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/outbreaklab/go-outbreak/epidemic"
)

// Column names accepted in the header, mapped to compartment labels.
// Matching is case-insensitive and single-letter labels work too.
var columnLabels = map[string]string{
	"susceptible": epidemic.Susceptible,
	"exposed":     epidemic.Exposed,
	"infected":    epidemic.Infectious,
	"infectious":  epidemic.Infectious,
	"recovered":   epidemic.Recovered,
	"vaccinated":  epidemic.Vaccinated,
	"deceased":    epidemic.Deceased,
	"s":           epidemic.Susceptible,
	"e":           epidemic.Exposed,
	"i":           epidemic.Infectious,
	"r":           epidemic.Recovered,
	"v":           epidemic.Vaccinated,
	"d":           epidemic.Deceased,
}

// ReadInitialTable reads an initial compartment table from a CSV file.
func ReadInitialTable(filename string) (map[string]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ReadInitialTableReader(f)
}

// ReadInitialTableReader reads an initial compartment table from a CSV
// reader. The result maps compartment labels to counts; columns the
// model does not know are rejected so typos surface instead of silently
// dropping individuals.
func ReadInitialTableReader(r io.Reader) (map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	labels := make([]string, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		label, ok := columnLabels[name]
		if !ok {
			return nil, fmt.Errorf("unknown compartment column %q in header: %v", col, header)
		}
		labels[i] = label
	}

	record, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing data row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading data row: %w", err)
	}
	if len(record) < len(header) {
		return nil, fmt.Errorf("data row has %d columns, header has %d", len(record), len(header))
	}

	table := make(map[string]float64, len(labels))
	for i, label := range labels {
		value := strings.TrimSpace(record[i])
		count, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: invalid count %q: %w", header[i], value, err)
		}
		if _, dup := table[label]; dup {
			return nil, fmt.Errorf("duplicate column for compartment %s", epidemic.CompartmentName(label))
		}
		table[label] = count
	}

	return table, nil
}

// WriteSeriesCSV writes a time series as CSV with a time column followed
// by one column per compartment label.
func WriteSeriesCSV(w io.Writer, t []float64, labels []string, u []map[string]float64) error {
	writer := csv.NewWriter(w)

	header := append([]string{"t"}, labels...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(header))
	for i := range t {
		row[0] = strconv.FormatFloat(t[i], 'g', -1, 64)
		for j, label := range labels {
			row[j+1] = strconv.FormatFloat(u[i][label], 'g', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
