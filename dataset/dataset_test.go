package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func TestLoadWhitespace(t *testing.T) {
	input := `
# price rooms baths
5 1 2
8	2 3

13 3   5
`
	d, err := Load(strings.NewReader(input), Options{Format: FormatWhitespace})
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 2, d.NFeatures())
	assert.Equal(t, []float64{5, 8, 13}, d.Y)
	assert.Equal(t, [][]float64{{1, 2}, {2, 3}, {3, 5}}, d.X)
}

func TestLoadCSVWithHeaderAndLabelColumn(t *testing.T) {
	input := "x0,x1,y\n1,2,5\n2, 3,8\n3,5,13\n"
	d, err := Load(strings.NewReader(input), Options{Format: FormatCSV, Header: true, LabelColumn: 2})
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 8, 13}, d.Y)
	assert.Equal(t, [][]float64{{1, 2}, {2, 3}, {3, 5}}, d.X)
}

func TestLoadFixedFeatureCount(t *testing.T) {
	_, err := Load(strings.NewReader("1 2 3\n4 5 6\n"), Options{Features: 3})

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadRaggedRecord(t *testing.T) {
	_, err := Load(strings.NewReader("1,2,3\n4,5\n"), Options{Format: FormatCSV})

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadBadNumber(t *testing.T) {
	_, err := Load(strings.NewReader("1 2\n3 abc\n"), Options{})

	var valErr *errors.ValueError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "line 2 field 1")
}

func TestLoadRejectsInvalidOptions(t *testing.T) {
	var valErr *errors.ValidationError

	_, err := Load(strings.NewReader("1 2\n"), Options{LabelColumn: -1})
	assert.True(t, errors.As(err, &valErr))

	_, err = Load(strings.NewReader("1 2\n"), Options{LabelColumn: 5})
	assert.True(t, errors.As(err, &valErr))

	_, err = Load(strings.NewReader("1 2\n"), Options{Format: Format(9)})
	assert.True(t, errors.As(err, &valErr))
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(strings.NewReader("\n# nothing\n"), Options{})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = Load(strings.NewReader("a,b\n"), Options{Format: FormatCSV, Header: true})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("5 1 2\n8 2 3\n"), 0o600))

	d, err := LoadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "csv", f.String())

	f, err = ParseFormat("whitespace")
	require.NoError(t, err)
	assert.Equal(t, FormatWhitespace, f)

	_, err = ParseFormat("parquet")
	assert.Error(t, err)
}
