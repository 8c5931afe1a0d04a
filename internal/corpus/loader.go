// Package corpus loads tabular report data and normalizes it into records.
package corpus

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"xrayrag/internal/domain"
	"xrayrag/internal/ragerrors"
)

// PlaceholderText is the report text of the degraded single-record corpus
// used when the data source cannot be read.
const PlaceholderText = "Sample chest X-ray report showing normal findings"

// noReportText is assigned when no usable text column exists in the source.
const noReportText = "No report available"

// Load reads a CSV file and normalizes every row into a Record.
//
// Text column resolution, in priority order: an existing "text" column, a
// "report" column, the string-typed column with the greatest mean length, or
// the literal "No report available" for every row. IDs come from an "id"
// column verbatim, else from the row position.
//
// An unreadable or unparsable source never fails: the loader degrades to a
// single placeholder record so downstream components stay functional.
func Load(path string, logger *slog.Logger) []domain.Record {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Error("error loading dataset",
			"err", ragerrors.NewDataSourceError(path, err.Error()))
		return placeholderCorpus()
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		logger.Error("error parsing dataset",
			"err", ragerrors.NewDataSourceError(path, errString(err)))
		return placeholderCorpus()
	}

	header := rows[0]
	data := rows[1:]
	if len(data) == 0 {
		logger.Error("error loading dataset",
			"err", ragerrors.NewDataSourceError(path, "dataset has no rows"))
		return placeholderCorpus()
	}

	textIdx := resolveTextColumn(header, data)
	idIdx := columnIndex(header, "id")

	records := make([]domain.Record, 0, len(data))
	for i, row := range data {
		// A resolved column is used verbatim, empty cells included; the
		// fallbacks apply only when no column exists at all.
		id := strconv.Itoa(i)
		if idIdx >= 0 {
			id = cell(row, idIdx)
		}
		text := noReportText
		if textIdx >= 0 {
			text = cell(row, textIdx)
		}
		records = append(records, domain.Record{ID: id, Text: text})
	}
	logger.Info("loaded dataset", "path", path, "records", len(records))
	return records
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func placeholderCorpus() []domain.Record {
	return []domain.Record{{ID: "1", Text: PlaceholderText}}
}

// resolveTextColumn applies the column-sniffing policy and returns the index
// of the column to use as report text, or -1 when no candidate exists.
func resolveTextColumn(header []string, rows [][]string) int {
	if idx := columnIndex(header, "text"); idx >= 0 {
		return idx
	}
	if idx := columnIndex(header, "report"); idx >= 0 {
		return idx
	}
	// Fall back to the string-typed column with the greatest mean length.
	best := -1
	bestMean := -1.0
	for col := range header {
		if !isStringColumn(rows, col) {
			continue
		}
		if m := meanLength(rows, col); m > bestMean {
			best = col
			bestMean = m
		}
	}
	return best
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// isStringColumn reports whether a column holds free text rather than
// numbers. A column with at least one non-empty, non-numeric cell counts as
// string-typed; an all-numeric or all-empty column does not.
func isStringColumn(rows [][]string, col int) bool {
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return true
		}
	}
	return false
}

func meanLength(rows [][]string, col int) float64 {
	if len(rows) == 0 {
		return 0
	}
	total := 0
	for _, row := range rows {
		if col < len(row) {
			total += len(row[col])
		}
	}
	return float64(total) / float64(len(rows))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
