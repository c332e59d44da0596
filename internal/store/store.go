// Package store persists lost-and-found entities in SQLite.
//
// Lookups of a single row return (nil, nil) when nothing matches; writes
// addressed by ID return model.ErrNotFound instead.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

func expectOneRow(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected %s rows: %w", entity, err)
	}
	if n == 0 {
		return model.NotFoundf("%s", entity)
	}
	return nil
}

func getBlob(ctx context.Context, db *sql.DB, query string, id int64) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime.String, nil
}
