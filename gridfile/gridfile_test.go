package gridfile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, path string) string {
	t.Helper()
	ctx := context.Background()
	w, err := gridfile.Create(ctx, path)
	require.NoError(t, err)

	m, err := matrix.NewDenseFrom([][]float64{{1, 2, 3}, {-4, 5.5, 1e-300}})
	require.NoError(t, err)
	require.NoError(t, w.WriteInt(ctx, "nx", 4))
	require.NoError(t, w.WriteReal(ctx, "Bt_axis", -2.5))
	require.NoError(t, w.WriteString(ctx, "curvature_type", "curl(b/B)"))
	require.NoError(t, w.WriteField(ctx, "Rxy", m))
	require.NoError(t, w.EmbedInput(ctx, "geqdsk", []byte("header\n1 2 3\n")))
	id := w.ID()
	require.NoError(t, w.Close())

	return id
}

func TestWriteRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grid.db")
	id := writeSample(t, path)

	r, err := gridfile.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	meta, err := r.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, meta["grid_id"])
	_, err = uuid.Parse(meta["grid_id"])
	assert.NoError(t, err)
	assert.Equal(t, gridfile.Generator, meta["generator"])
	assert.Equal(t, gridfile.Version, meta["version"])
	assert.NotEmpty(t, meta["created"])

	nx, err := r.Int(ctx, "nx")
	require.NoError(t, err)
	assert.Equal(t, 4, nx)
	nxf, err := r.Real(ctx, "nx")
	require.NoError(t, err)
	assert.Equal(t, 4.0, nxf)
	bt, err := r.Real(ctx, "Bt_axis")
	require.NoError(t, err)
	assert.Equal(t, -2.5, bt)
	ct, err := r.String(ctx, "curvature_type")
	require.NoError(t, err)
	assert.Equal(t, "curl(b/B)", ct)

	f, err := r.Field(ctx, "Rxy")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, -4, 5.5, 1e-300}, f.Data())
	rows, cols := f.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	names, err := r.FieldNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rxy"}, names)
	scalars, err := r.ScalarNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bt_axis", "curvature_type", "nx"}, scalars)

	inputs, err := r.Inputs(ctx)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "geqdsk", inputs[0].Name)
	assert.Equal(t, []byte("header\n1 2 3\n"), inputs[0].Content)
}

func TestReader_Errors(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "grid.db")
	writeSample(t, path)
	r, err := gridfile.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	cases := []struct {
		name string
		read func() error
		want error
	}{
		{"missing scalar", func() error { _, err := r.Int(ctx, "ny"); return err }, gridfile.ErrNotFound},
		{"missing field", func() error { _, err := r.Field(ctx, "Zxy"); return err }, gridfile.ErrNotFound},
		{"int as string", func() error { _, err := r.String(ctx, "nx"); return err }, gridfile.ErrKind},
		{"real as int", func() error { _, err := r.Int(ctx, "Bt_axis"); return err }, gridfile.ErrKind},
		{"string as real", func() error { _, err := r.Real(ctx, "curvature_type"); return err }, gridfile.ErrKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.read(), tc.want)
		})
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.db")
	first := writeSample(t, path)

	t.Run("refuses existing", func(t *testing.T) {
		_, err := gridfile.Create(ctx, path)
		assert.ErrorIs(t, err, gridfile.ErrExists)
	})

	t.Run("overwrite", func(t *testing.T) {
		w, err := gridfile.Create(ctx, path, gridfile.Overwrite(), gridfile.WithGenerator("test", "9"))
		require.NoError(t, err)
		require.NoError(t, w.WriteInt(ctx, "ny", 8))
		require.NoError(t, w.Close())

		r, err := gridfile.Open(ctx, path)
		require.NoError(t, err)
		defer r.Close()
		meta, err := r.Metadata(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, first, meta["grid_id"])
		assert.Equal(t, "test", meta["generator"])
		assert.Equal(t, "9", meta["version"])
		_, err = r.Int(ctx, "nx")
		assert.ErrorIs(t, err, gridfile.ErrNotFound)
	})

	t.Run("duplicates", func(t *testing.T) {
		w, err := gridfile.Create(ctx, filepath.Join(dir, "dup.db"))
		require.NoError(t, err)
		defer w.Abort()
		require.NoError(t, w.WriteInt(ctx, "nx", 1))
		assert.ErrorIs(t, w.WriteReal(ctx, "nx", 1), gridfile.ErrDuplicate)
		require.NoError(t, w.EmbedInput(ctx, "a", []byte("x")))
		assert.ErrorIs(t, w.EmbedInput(ctx, "a", []byte("y")), gridfile.ErrDuplicate)
	})

	t.Run("abort removes file", func(t *testing.T) {
		p := filepath.Join(dir, "aborted.db")
		w, err := gridfile.Create(ctx, p)
		require.NoError(t, err)
		w.Abort()
		assert.ErrorIs(t, w.Close(), gridfile.ErrClosed)
		_, err = gridfile.Open(ctx, p)
		assert.ErrorIs(t, err, gridfile.ErrNotFound)
	})
}
