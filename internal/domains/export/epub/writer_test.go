package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, chapterCount int) []byte {
	t.Helper()

	data, err := Write(Assemble(testMetadata(), testChapters(chapterCount)))
	require.NoError(t, err)
	return data
}

func readArchive(t *testing.T, data []byte) *zip.Reader {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return zr
}

func TestWrite_MimetypeFirstAndStored(t *testing.T) {
	data := buildArchive(t, 2)
	zr := readArchive(t, data)

	require.NotEmpty(t, zr.File)
	first := zr.File[0]

	assert.Equal(t, "mimetype", first.Name)
	assert.Equal(t, uint16(zip.Store), first.Method)

	rc, err := first.Open()
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, MimeType, string(content))
}

func TestWrite_MimetypeReadableAsLeadingBytes(t *testing.T) {
	data := buildArchive(t, 1)

	// Local file header (30 bytes) + name "mimetype" (8 bytes), then
	// the uncompressed content. This is how conformant readers sniff
	// the format without a zip parser.
	require.Greater(t, len(data), 38+len(MimeType))
	assert.Equal(t, MimeType, string(data[38:38+len(MimeType)]))
}

func TestWrite_AllEntriesPresent(t *testing.T) {
	zr := readArchive(t, buildArchive(t, 3))

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}

	for _, want := range []string{
		"mimetype",
		"META-INF/container.xml",
		"OEBPS/content.opf",
		"OEBPS/toc.ncx",
		"OEBPS/index.xhtml",
		"OEBPS/chapter_1.xhtml",
		"OEBPS/chapter_2.xhtml",
		"OEBPS/chapter_3.xhtml",
	} {
		assert.True(t, names[want], "archive missing %s", want)
	}
	assert.Len(t, zr.File, 8)
}

func TestWrite_ContentEntriesDeflated(t *testing.T) {
	zr := readArchive(t, buildArchive(t, 1))

	for _, f := range zr.File {
		if f.Name == "mimetype" {
			continue
		}
		assert.Equal(t, uint16(zip.Deflate), f.Method, "entry %s", f.Name)
	}
}

func TestWrite_RoundTripContent(t *testing.T) {
	tree := Assemble(testMetadata(), testChapters(2))
	data, err := Write(tree)
	require.NoError(t, err)

	zr := readArchive(t, data)
	for _, f := range zr.File {
		want, ok := tree.Lookup(f.Name)
		require.True(t, ok, "unexpected entry %s", f.Name)

		rc, err := f.Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		assert.Equal(t, want, got, "entry %s corrupted", f.Name)
	}
}

func TestWrite_Deterministic(t *testing.T) {
	first := buildArchive(t, 3)
	second := buildArchive(t, 3)

	assert.Equal(t, first, second, "identical input must produce byte-identical archives")
}
