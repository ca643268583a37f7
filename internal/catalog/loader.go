// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	// DuckDB driver - read_csv does the parsing and typing of catalog files
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/cicerone/internal/logging"
)

// csvColumns is the fixed column layout of a catalog file.
const csvColumns = `{
	'website': 'VARCHAR',
	'name': 'VARCHAR',
	'address': 'VARCHAR',
	'phone': 'VARCHAR',
	'tags': 'VARCHAR',
	'category': 'VARCHAR',
	'rating_average': 'DOUBLE',
	'rating_count': 'BIGINT',
	'lat': 'DOUBLE',
	'lng': 'DOUBLE'
}`

// LoaderConfig controls how catalog CSV files are parsed.
type LoaderConfig struct {
	Delimiter string
	Header    bool
	Timeout   time.Duration
}

// Loader reads catalog CSV files through an in-memory DuckDB instance.
type Loader struct {
	db  *sql.DB
	cfg LoaderConfig
}

// NewLoader opens the in-memory DuckDB connection used for parsing.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	if len(cfg.Delimiter) != 1 {
		return nil, fmt.Errorf("catalog: delimiter must be a single character, got %q", cfg.Delimiter)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Loader{db: db, cfg: cfg}, nil
}

// Close releases the DuckDB connection.
func (l *Loader) Close() error {
	return l.db.Close()
}

// Load reads every row of the CSV file at path in file order.
func (l *Loader) Load(ctx context.Context, path string) ([]Venue, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	//nolint:gosec // path and delimiter are quoted literals from configuration
	query := fmt.Sprintf(`SELECT
		COALESCE(website, ''), COALESCE(name, ''), COALESCE(address, ''),
		COALESCE(phone, ''), COALESCE(tags, ''), COALESCE(category, ''),
		COALESCE(rating_average, 0), COALESCE(rating_count, 0), lat, lng
	FROM read_csv(%s, delim = %s, header = %t, quote = '"', auto_detect = false, columns = %s)`,
		quoteLiteral(path), quoteLiteral(l.cfg.Delimiter), l.cfg.Header, csvColumns)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: read_csv: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var venues []Venue
	line := 0
	for rows.Next() {
		line++
		var (
			v        Venue
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&v.Website, &v.Name, &v.Address, &v.Phone, &v.Tags, &v.Category,
			&v.RatingAverage, &v.RatingCount, &lat, &lng); err != nil {
			return nil, fmt.Errorf("catalog %s row %d: %w", path, line, err)
		}
		if !lat.Valid || !lng.Valid {
			return nil, fmt.Errorf("catalog %s row %d: missing coordinates", path, line)
		}
		v.Latitude, v.Longitude = lat.Float64, lng.Float64
		if !v.Point().Valid() {
			return nil, fmt.Errorf("catalog %s row %d: coordinates out of range", path, line)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if len(venues) == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrEmptyCatalog)
	}

	log := logging.WithComponent("catalog")
	log.Debug().
		Str("path", path).
		Int("venues", len(venues)).
		Msg("Catalog file loaded")
	return venues, nil
}

// ErrEmptyCatalog is returned for a catalog file without rows.
var ErrEmptyCatalog = errors.New("no venues")

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
