package gridfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// Reader reads entries from a grid file.
type Reader struct {
	db *sql.DB
}

// Open opens an existing grid file.
func Open(ctx context.Context, path string) (*Reader, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Open %s: %w", path, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}
	r := &Reader{db: db}
	if _, err := r.Metadata(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Open %s: %w", path, err)
	}

	return r, nil
}

// Close closes the file.
func (r *Reader) Close() error { return r.db.Close() }

// Metadata returns the metadata table.
func (r *Reader) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("Metadata: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("Metadata: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Metadata: %w", err)
	}

	return out, nil
}

type scalarRow struct {
	kind string
	i    sql.NullInt64
	f    sql.NullFloat64
	s    sql.NullString
}

func (r *Reader) scalar(ctx context.Context, name string) (scalarRow, error) {
	var row scalarRow
	err := r.db.QueryRowContext(ctx,
		`SELECT kind, int_value, real_value, text_value FROM scalars WHERE name = ?`, name).
		Scan(&row.kind, &row.i, &row.f, &row.s)
	if errors.Is(err, sql.ErrNoRows) {
		return row, fmt.Errorf("scalar %q: %w", name, ErrNotFound)
	}

	return row, err
}

// Int returns an integer scalar.
func (r *Reader) Int(ctx context.Context, name string) (int, error) {
	row, err := r.scalar(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("Int: %w", err)
	}
	if row.kind != kindInt {
		return 0, fmt.Errorf("Int %q is %s: %w", name, row.kind, ErrKind)
	}

	return int(row.i.Int64), nil
}

// Real returns a real scalar. Integer scalars are converted.
func (r *Reader) Real(ctx context.Context, name string) (float64, error) {
	row, err := r.scalar(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("Real: %w", err)
	}
	switch row.kind {
	case kindReal:
		return row.f.Float64, nil
	case kindInt:
		return float64(row.i.Int64), nil
	}

	return 0, fmt.Errorf("Real %q is %s: %w", name, row.kind, ErrKind)
}

// String returns a string scalar.
func (r *Reader) String(ctx context.Context, name string) (string, error) {
	row, err := r.scalar(ctx, name)
	if err != nil {
		return "", fmt.Errorf("String: %w", err)
	}
	if row.kind != kindText {
		return "", fmt.Errorf("String %q is %s: %w", name, row.kind, ErrKind)
	}

	return row.s.String, nil
}

// Field returns a 2D array.
func (r *Reader) Field(ctx context.Context, name string) (*matrix.Dense, error) {
	var (
		rows, cols int
		blob       []byte
	)
	err := r.db.QueryRowContext(ctx, `SELECT rows, cols, data FROM fields WHERE name = ?`, name).
		Scan(&rows, &cols, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Field %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Field: %w", err)
	}
	m, err := decodeField(rows, cols, blob)
	if err != nil {
		return nil, fmt.Errorf("Field %q: %w", name, err)
	}

	return m, nil
}

func (r *Reader) names(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

// FieldNames lists the stored fields in name order.
func (r *Reader) FieldNames(ctx context.Context) ([]string, error) {
	out, err := r.names(ctx, `SELECT name FROM fields ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("FieldNames: %w", err)
	}

	return out, nil
}

// ScalarNames lists the stored scalars in name order.
func (r *Reader) ScalarNames(ctx context.Context) ([]string, error) {
	out, err := r.names(ctx, `SELECT name FROM scalars ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ScalarNames: %w", err)
	}

	return out, nil
}

// Inputs returns the embedded input files in name order.
func (r *Reader) Inputs(ctx context.Context) ([]Input, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, content FROM inputs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("Inputs: %w", err)
	}
	defer rows.Close()
	var out []Input
	for rows.Next() {
		var in Input
		if err := rows.Scan(&in.Name, &in.Content); err != nil {
			return nil, fmt.Errorf("Inputs: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Inputs: %w", err)
	}

	return out, nil
}
