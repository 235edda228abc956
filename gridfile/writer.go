package gridfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/fluxgrid/matrix"
	_ "modernc.org/sqlite"
)

// Option configures Create.
type Option func(*settings)

type settings struct {
	overwrite bool
	generator string
	version   string
}

// Overwrite lets Create replace an existing file.
func Overwrite() Option {
	return func(s *settings) { s.overwrite = true }
}

// WithGenerator records a different generator name and version.
func WithGenerator(name, version string) Option {
	return func(s *settings) { s.generator, s.version = name, version }
}

// Writer adds entries to a new grid file inside one transaction.
// A Writer is not safe for concurrent use.
type Writer struct {
	path  string
	db    *sql.DB
	tx    *sql.Tx
	id    string
	names map[string]bool
	files map[string]bool
}

// Create makes a new grid file at path and starts its transaction. The
// metadata rows are written immediately.
func Create(ctx context.Context, path string, opts ...Option) (*Writer, error) {
	s := settings{generator: Generator, version: Version}
	for _, o := range opts {
		o(&s)
	}

	_, err := os.Stat(path)
	switch {
	case err == nil && !s.overwrite:
		return nil, fmt.Errorf("Create %s: %w", path, ErrExists)
	case err == nil:
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("Create: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Create: schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("Create: %w", err)
	}

	w := &Writer{
		path:  path,
		db:    db,
		tx:    tx,
		id:    uuid.NewString(),
		names: make(map[string]bool),
		files: make(map[string]bool),
	}
	meta := [][2]string{
		{"grid_id", w.id},
		{"created", time.Now().UTC().Format(time.RFC3339)},
		{"generator", s.generator},
		{"version", s.version},
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			w.Abort()
			return nil, fmt.Errorf("Create: metadata: %w", err)
		}
	}

	return w, nil
}

// ID returns the grid_id recorded in the metadata.
func (w *Writer) ID() string { return w.id }

func (w *Writer) claim(name string) error {
	if w.tx == nil {
		return ErrClosed
	}
	if w.names[name] {
		return fmt.Errorf("%q: %w", name, ErrDuplicate)
	}
	w.names[name] = true

	return nil
}

func (w *Writer) scalar(ctx context.Context, name, kind string, i, r, s any) error {
	if err := w.claim(name); err != nil {
		return err
	}
	_, err := w.tx.ExecContext(ctx,
		`INSERT INTO scalars (name, kind, int_value, real_value, text_value) VALUES (?, ?, ?, ?, ?)`,
		name, kind, i, r, s)

	return err
}

// WriteInt stores an integer scalar.
func (w *Writer) WriteInt(ctx context.Context, name string, v int) error {
	if err := w.scalar(ctx, name, kindInt, int64(v), nil, nil); err != nil {
		return fmt.Errorf("WriteInt: %w", err)
	}

	return nil
}

// WriteReal stores a real scalar.
func (w *Writer) WriteReal(ctx context.Context, name string, v float64) error {
	if err := w.scalar(ctx, name, kindReal, nil, v, nil); err != nil {
		return fmt.Errorf("WriteReal: %w", err)
	}

	return nil
}

// WriteString stores a string scalar.
func (w *Writer) WriteString(ctx context.Context, name, v string) error {
	if err := w.scalar(ctx, name, kindText, nil, nil, v); err != nil {
		return fmt.Errorf("WriteString: %w", err)
	}

	return nil
}

// WriteField stores a 2D array.
func (w *Writer) WriteField(ctx context.Context, name string, m *matrix.Dense) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("WriteField %s: %w", name, err)
	}
	if err := w.claim(name); err != nil {
		return fmt.Errorf("WriteField: %w", err)
	}
	rows, cols := m.Shape()
	_, err := w.tx.ExecContext(ctx,
		`INSERT INTO fields (name, rows, cols, data) VALUES (?, ?, ?, ?)`,
		name, rows, cols, encodeField(m))
	if err != nil {
		return fmt.Errorf("WriteField %s: %w", name, err)
	}

	return nil
}

// EmbedInput stores the content of an input file under name.
func (w *Writer) EmbedInput(ctx context.Context, name string, content []byte) error {
	if w.tx == nil {
		return fmt.Errorf("EmbedInput: %w", ErrClosed)
	}
	if w.files[name] {
		return fmt.Errorf("EmbedInput %q: %w", name, ErrDuplicate)
	}
	w.files[name] = true
	if content == nil {
		content = []byte{}
	}
	if _, err := w.tx.ExecContext(ctx, `INSERT INTO inputs (name, content) VALUES (?, ?)`, name, content); err != nil {
		return fmt.Errorf("EmbedInput %s: %w", name, err)
	}

	return nil
}

// Close commits the transaction and closes the file.
func (w *Writer) Close() error {
	if w.tx == nil {
		return fmt.Errorf("Close: %w", ErrClosed)
	}
	err := w.tx.Commit()
	w.tx = nil
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}

	return nil
}

// Abort discards everything written and removes the file. It is safe to
// call after Close, when it does nothing.
func (w *Writer) Abort() {
	if w.tx == nil {
		return
	}
	_ = w.tx.Rollback()
	w.tx = nil
	_ = w.db.Close()
	_ = os.Remove(w.path)
}
