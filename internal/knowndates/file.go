package knowndates

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miqueiast/vendas-amazon/internal/daterange"
)

// dateColumns are the CSV header names recognised as the date column.
var dateColumns = []string{"date", "data", "day", "dt"}

// File reads known days from a file. The format follows the extension:
//
//	.csv          column named date/data/day/dt, else the first column
//	.json .yaml   a list of days, or a mapping with a "dates" list
//	anything else one day per line, '#' starts a comment
type File struct {
	Path string
}

// Load implements Source
func (f File) Load(_ context.Context) (daterange.Set, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var values []string
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv":
		values, err = parseCSV(data)
	case ".json", ".yaml", ".yml":
		values, err = parseYAML(data)
	default:
		values = parseLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path, err)
	}

	return normalizeAll(values, f.Name()), nil
}

// Name implements Source
func (f File) Name() string { return "file:" + f.Path }

func parseLines(data []byte) []string {
	var values []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			values = append(values, line)
		}
	}
	return values
}

func parseCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := -1
	for i, name := range header {
		for _, want := range dateColumns {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}

	var values []string
	if col < 0 {
		// No recognised header: the first row is data.
		col = 0
		values = append(values, header[0])
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values, nil
}

func parseYAML(data []byte) ([]string, error) {
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Dates []string `yaml:"dates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Dates, nil
}
