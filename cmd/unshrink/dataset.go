package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/go-unshrink/simulate"
)

const (
	ColumnPrediction = "prediction"
	ColumnTarget     = "target"
	ColumnWeight     = "weight"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyFile     = errors.New("no rows in file")
)

// table is a parsed csv file keyed by lower cased header name
type table struct {
	columns map[string][]float64
	rows    int
}

func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := parseTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", path, err)
	}
	return t, nil
}

func parseTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, err
	}
	names := make([]string, len(header))
	columns := make(map[string][]float64, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(h))
		columns[names[i]] = nil
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows++
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q, %w", rows, names[i], err)
			}
			columns[names[i]] = append(columns[names[i]], v)
		}
	}
	if rows == 0 {
		return nil, ErrEmptyFile
	}
	return &table{columns: columns, rows: rows}, nil
}

func (t *table) column(name string) ([]float64, error) {
	col, exists := t.columns[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrMissingColumn)
	}
	return col, nil
}

// readPairs loads a prediction,target csv file
func readPairs(path string) (simulate.Dataset, error) {
	t, err := readTable(path)
	if err != nil {
		return simulate.Dataset{}, err
	}
	preds, err := t.column(ColumnPrediction)
	if err != nil {
		return simulate.Dataset{}, fmt.Errorf("%s, %w", path, err)
	}
	targets, err := t.column(ColumnTarget)
	if err != nil {
		return simulate.Dataset{}, fmt.Errorf("%s, %w", path, err)
	}
	return simulate.Dataset{Predictions: preds, Targets: targets}, nil
}

// readCohort loads a prediction csv file with an optional weight column. Weights are nil when the
// column is absent.
func readCohort(path string) (preds, weights []float64, err error) {
	t, err := readTable(path)
	if err != nil {
		return nil, nil, err
	}
	preds, err = t.column(ColumnPrediction)
	if err != nil {
		return nil, nil, fmt.Errorf("%s, %w", path, err)
	}
	if _, exists := t.columns[ColumnWeight]; exists {
		weights = t.columns[ColumnWeight]
	}
	return preds, weights, nil
}

// writePairs writes a dataset as a prediction,target csv
func writePairs(w io.Writer, d simulate.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{ColumnPrediction, ColumnTarget}); err != nil {
		return err
	}
	for i := 0; i < d.Len(); i++ {
		record := []string{
			strconv.FormatFloat(d.Predictions[i], 'g', -1, 64),
			strconv.FormatFloat(d.Targets[i], 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
