package checksum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/archlens/internal/adapters/outbound/checksum"
)

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("hello archive"), 0o644))

	meta, err := checksum.File(path)
	require.NoError(t, err)
	assert.Equal(t, int64(13), meta.SizeBytes)
	assert.Equal(t, checksum.Hex(xxhash.Sum64String("hello archive")), meta.Checksum)
	assert.Len(t, meta.Checksum, 16)
}

func TestFile_EqualContentEqualChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	b := filepath.Join(dir, "b.zip")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))

	ma, err := checksum.File(a)
	require.NoError(t, err)
	mb, err := checksum.File(b)
	require.NoError(t, err)
	assert.Equal(t, ma, mb)
}

func TestFile_Missing(t *testing.T) {
	_, err := checksum.File(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}

func TestHex_FixedWidth(t *testing.T) {
	assert.Equal(t, "000000000000000f", checksum.Hex(15))
}
