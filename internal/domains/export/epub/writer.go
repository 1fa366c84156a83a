package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Write serializes a package tree into OCF ZIP bytes. The mimetype
// entry goes first and is stored without compression so conformant
// readers can sniff it as the leading bytes of the file; everything
// else is deflated.
func Write(tree *PackageTree) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, FileEntry{Path: mimetypePath, Data: []byte(MimeType)}, zip.Store); err != nil {
		return nil, err
	}

	for _, entry := range tree.Entries {
		if entry.Path == mimetypePath {
			continue
		}
		if err := writeEntry(zw, entry, zip.Deflate); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, entry FileEntry, method uint16) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   entry.Path,
		Method: method,
	})
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", entry.Path, err)
	}
	if _, err := w.Write(entry.Data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", entry.Path, err)
	}
	return nil
}
