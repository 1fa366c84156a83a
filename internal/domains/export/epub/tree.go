// Package epub builds spec-conformant EPUB archives from sanitized
// chapter markup. Assembly is a pure function over its inputs; the
// writer serializes the resulting file tree into OCF ZIP bytes.
package epub

// MimeType is the media type of the produced artifact and the exact
// content of the archive's mimetype entry.
const MimeType = "application/epub+zip"

// Well-known archive paths. All paths use forward slashes regardless
// of host platform.
const (
	mimetypePath  = "mimetype"
	containerPath = "META-INF/container.xml"
	opfPath       = "OEBPS/content.opf"
	ncxPath       = "OEBPS/toc.ncx"
	indexPath     = "OEBPS/index.xhtml"
)

// Metadata is the package-level metadata stamped into the OPF.
type Metadata struct {
	// Title of the book.
	Title string

	// Author display name. The assembler does not apply fallbacks;
	// callers resolve the name before assembly.
	Author string

	// Description text, optional.
	Description string

	// Language is a BCP 47 tag (e.g. "en").
	Language string

	// Identifier is the package's unique identifier. Deriving it from
	// the draft id keeps re-exports byte-reproducible.
	Identifier string
}

// Chapter is one ordered content unit. Body is sanitized XHTML.
type Chapter struct {
	Title string
	Body  string
}

// FileEntry is one archive-relative path with its content.
type FileEntry struct {
	Path string
	Data []byte
}

// PackageTree is the ordered logical file tree of one EPUB package.
// It is produced fresh on every export and never mutated afterwards.
type PackageTree struct {
	Entries []FileEntry
}

func (t *PackageTree) add(path string, data []byte) {
	t.Entries = append(t.Entries, FileEntry{Path: path, Data: data})
}

// Lookup returns the content stored under path.
func (t *PackageTree) Lookup(path string) ([]byte, bool) {
	for _, e := range t.Entries {
		if e.Path == path {
			return e.Data, true
		}
	}
	return nil, false
}
