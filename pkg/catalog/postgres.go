package catalog

import (
	"SmartShopping/internal/entity"
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	validTableName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	validColumnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// DefaultOrderColumn is the column that fixes the load order of Records.
const DefaultOrderColumn = "id"

func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, &LoadError{Source: "postgres", Err: err}
	}
	return db, nil
}

// LoadPostgres reads the whole price table once. The table needs name and
// price columns plus orderBy, which fixes the order Records returns.
func LoadPostgres(ctx context.Context, db *sqlx.DB, table, orderBy string) (ICatalog, error) {
	source := "postgres:" + table
	if !validTableName.MatchString(table) {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("invalid table name %q", table)}
	}
	if !validColumnName.MatchString(orderBy) {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("invalid order column %q", orderBy)}
	}

	var records []entity.PriceCatalogEntry
	query := fmt.Sprintf(`SELECT name, price FROM %s ORDER BY %s`, table, orderBy)
	if err := db.SelectContext(ctx, &records, query); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	c, err := New(records)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return c, nil
}
