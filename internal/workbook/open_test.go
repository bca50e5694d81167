package workbook

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDoc = `<workbook source-build='2023.1.0 (20231.23.0210.1558)' version='18.1'>
  <datasources>
    <datasource name='ds' caption='DS'/>
  </datasources>
</workbook>`

func writeWorkbookFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeArchive(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for entryName, content := range entries {
		w, err := zw.Create(entryName)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestOpenTwb(t *testing.T) {
	path := writeWorkbookFile(t, "quarterly sales.twb", minimalDoc)

	wb, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, path, wb.Path)
	assert.Equal(t, "quarterly sales", wb.Name)
	assert.Equal(t, "2023.1.0 (20231.23.0210.1558)", wb.Version)
	require.NotNil(t, wb.Root)
	assert.Equal(t, "workbook", wb.Root.Name)
}

func TestOpenTwbVersionFallback(t *testing.T) {
	path := writeWorkbookFile(t, "wb.twb", `<workbook version='18.1'/>`)

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "18.1", wb.Version)
}

func TestOpenTwbx(t *testing.T) {
	path := writeArchive(t, "packaged.twbx", map[string]string{
		"Data/extract.hyper": "not xml",
		"packaged.twb":       minimalDoc,
	})

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "packaged", wb.Name)
	require.NotNil(t, wb.Root)
	assert.NotNil(t, wb.Root.Child("datasources"))
}

func TestOpenTwbxPrefersTopLevelEntry(t *testing.T) {
	path := writeArchive(t, "packaged.twbx", map[string]string{
		"backup/old.twb": `<workbook version='old'/>`,
		"current.twb":    `<workbook version='new'/>`,
	})

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "new", wb.Version)
}

func TestOpenTwbxNestedOnly(t *testing.T) {
	path := writeArchive(t, "packaged.twbx", map[string]string{
		"nested/inner.twb": `<workbook version='nested'/>`,
	})

	wb, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "nested", wb.Version)
}

func TestOpenTwbxNoWorkbookEntry(t *testing.T) {
	path := writeArchive(t, "empty.twbx", map[string]string{
		"Data/extract.hyper": "not xml",
	})

	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoWorkbookEntry)
}

func TestOpenUnsupportedExtension(t *testing.T) {
	path := writeWorkbookFile(t, "report.pdf", "%PDF-1.4")

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.twb"))
	assert.Error(t, err)
}
