package gridfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/katalvlaran/fluxgrid/matrix"
)

// Generator and Version identify the program in the metadata table.
const (
	Generator = "fluxgrid"
	Version   = "0.1.0"
)

const driver = "sqlite"

// Scalar kinds as stored in the kind column.
const (
	kindInt  = "int"
	kindReal = "real"
	kindText = "text"
)

const schema = `
CREATE TABLE metadata (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE scalars (
	name       TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	int_value  INTEGER,
	real_value REAL,
	text_value TEXT
);
CREATE TABLE fields (
	name TEXT PRIMARY KEY,
	rows INTEGER NOT NULL,
	cols INTEGER NOT NULL,
	data BLOB NOT NULL
);
CREATE TABLE inputs (
	name    TEXT PRIMARY KEY,
	content BLOB NOT NULL
);
`

// Input is an embedded input file.
type Input struct {
	Name    string
	Content []byte
}

func encodeField(m *matrix.Dense) []byte {
	data := m.Data()
	out := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}

	return out
}

func decodeField(rows, cols int, blob []byte) (*matrix.Dense, error) {
	if rows < 1 || cols < 1 || len(blob) != 8*rows*cols {
		return nil, fmt.Errorf("%dx%d with %d bytes: %w", rows, cols, len(blob), ErrCorrupt)
	}
	m, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	data := m.Data()
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}

	return m, nil
}
