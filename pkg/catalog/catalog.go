// Package catalog holds the in-memory retail price table.
package catalog

import (
	"SmartShopping/internal/entity"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	NameColumn  = "name"
	PriceColumn = "price"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidPrice  = errors.New("invalid price")
)

// LoadError is returned when the catalog source cannot be turned into a catalog.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load price catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type ICatalog interface {
	Lookup(name string) float64
	Records() []entity.PriceCatalogEntry
	Len() int
}

type catalog struct {
	records []entity.PriceCatalogEntry
	prices  map[string]float64
}

// New builds a catalog from records in load order. Duplicate names (after case
// folding) keep the price loaded last.
func New(records []entity.PriceCatalogEntry) (ICatalog, error) {
	c := &catalog{
		records: make([]entity.PriceCatalogEntry, 0, len(records)),
		prices:  make(map[string]float64, len(records)),
	}

	for i, r := range records {
		if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price < 0 {
			return nil, fmt.Errorf("%w %v for %q at record %d", ErrInvalidPrice, r.Price, r.Name, i+1)
		}
		c.records = append(c.records, r)
		c.prices[normalize(r.Name)] = r.Price
	}

	return c, nil
}

func (c *catalog) Lookup(name string) float64 {
	return c.prices[normalize(name)]
}

func (c *catalog) Records() []entity.PriceCatalogEntry {
	out := make([]entity.PriceCatalogEntry, len(c.records))
	copy(out, c.records)
	return out
}

func (c *catalog) Len() int {
	return len(c.records)
}

// normalize is applied to stored names and lookup keys alike, so padded
// CSV cells still match.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func LoadCSVFile(path string) (ICatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	c, err := readCSV(f)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return c, nil
}

// LoadCSV reads a table with at least a Name and a Price column. Header
// matching ignores case and surrounding spaces; other columns are ignored.
func LoadCSV(r io.Reader) (ICatalog, error) {
	c, err := readCSV(r)
	if err != nil {
		return nil, &LoadError{Source: "csv", Err: err}
	}
	return c, nil
}

func readCSV(r io.Reader) (ICatalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty source", ErrMissingColumn)
		}
		return nil, err
	}

	nameIdx, priceIdx := -1, -1
	for i, col := range header {
		switch normalize(strings.TrimPrefix(col, "\ufeff")) {
		case NameColumn:
			nameIdx = i
		case PriceColumn:
			priceIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, "Name")
	}
	if priceIdx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, "Price")
	}

	var records []entity.PriceCatalogEntry
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if len(row) <= nameIdx || len(row) <= priceIdx {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(nameIdx, priceIdx)+1, len(row))
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w %q", line, ErrInvalidPrice, row[priceIdx])
		}

		records = append(records, entity.PriceCatalogEntry{
			Name:  strings.TrimSpace(row[nameIdx]),
			Price: price,
		})
	}

	return New(records)
}
