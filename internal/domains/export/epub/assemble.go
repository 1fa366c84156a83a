package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// opfPackage models the root <package> element of the OPF document.
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	Version          string      `xml:"version,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         opfManifest `xml:"manifest"`
	Spine            opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC     string        `xml:"xmlns:dc,attr"`
	Title       string        `xml:"dc:title"`
	Creator     string        `xml:"dc:creator"`
	Language    string        `xml:"dc:language"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Description string        `xml:"dc:description,omitempty"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// ncx models the navigation-control document consumed by reading
// devices (distinct from the human-visible index page).
type ncx struct {
	XMLName xml.Name  `xml:"ncx"`
	Xmlns   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Head    ncxHead   `xml:"head"`
	Title   ncxTitle  `xml:"docTitle"`
	NavMap  ncxNavMap `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxTitle struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	Points []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     ncxLabel   `xml:"navLabel"`
	Content   ncxContent `xml:"content"`
}

type ncxLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// ocfContainer models META-INF/container.xml, which points readers at
// the package document.
type ocfContainer struct {
	XMLName   xml.Name       `xml:"container"`
	Version   string         `xml:"version,attr"`
	Xmlns     string         `xml:"xmlns,attr"`
	RootFiles []ocfRootFiles `xml:"rootfiles>rootfile"`
}

type ocfRootFiles struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

const (
	xhtmlMediaType = "application/xhtml+xml"
	ncxMediaType   = "application/x-dtbncx+xml"
	opfMediaType   = "application/oebps-package+xml"

	xmlHeader = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"
)

// Assemble turns book metadata and ordered, sanitized chapters into
// the logical EPUB file tree. It is pure and deterministic: ids and
// ordering derive solely from list position, so identical input
// always yields byte-identical output.
func Assemble(meta Metadata, chapters []Chapter) *PackageTree {
	tree := &PackageTree{}

	tree.add(mimetypePath, []byte(MimeType))
	tree.add(containerPath, buildContainer())
	tree.add(opfPath, buildOPF(meta, chapters))
	tree.add(ncxPath, buildNCX(meta, chapters))
	tree.add(indexPath, buildIndex(meta, chapters))

	for i, ch := range chapters {
		tree.add(chapterPath(i+1), buildChapterDoc(ch))
	}

	return tree
}

// chapterPath returns the archive path of the n-th chapter (1-based).
func chapterPath(n int) string {
	return fmt.Sprintf("OEBPS/chapter_%d.xhtml", n)
}

func chapterHref(n int) string {
	return fmt.Sprintf("chapter_%d.xhtml", n)
}

func chapterID(n int) string {
	return fmt.Sprintf("chapter_%d", n)
}

func buildContainer() []byte {
	c := ocfContainer{
		Version: "1.0",
		Xmlns:   "urn:oasis:names:tc:opendocument:xmlns:container",
		RootFiles: []ocfRootFiles{
			{FullPath: opfPath, MediaType: opfMediaType},
		},
	}
	return marshalXML(c)
}

func buildOPF(meta Metadata, chapters []Chapter) []byte {
	pkg := opfPackage{
		Xmlns:            "http://www.idpf.org/2007/opf",
		Version:          "2.0",
		UniqueIdentifier: "book-id",
		Metadata: opfMetadata{
			XmlnsDC:     "http://purl.org/dc/elements/1.1/",
			Title:       meta.Title,
			Creator:     meta.Author,
			Language:    meta.Language,
			Identifier:  opfIdentifier{ID: "book-id", Value: meta.Identifier},
			Description: meta.Description,
		},
		Spine: opfSpine{Toc: "ncx"},
	}

	// Manifest: the navigation-control file, the index page, then one
	// entry per chapter with a position-derived id.
	pkg.Manifest.Items = append(pkg.Manifest.Items,
		opfManifestItem{ID: "ncx", Href: "toc.ncx", MediaType: ncxMediaType},
		opfManifestItem{ID: "index", Href: "index.xhtml", MediaType: xhtmlMediaType},
	)
	for i := range chapters {
		pkg.Manifest.Items = append(pkg.Manifest.Items, opfManifestItem{
			ID:        chapterID(i + 1),
			Href:      chapterHref(i + 1),
			MediaType: xhtmlMediaType,
		})
	}

	// Spine: the index page opens the book, then the chapters in
	// supplied order. Every idref resolves to a manifest item.
	pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfSpineItemRef{IDRef: "index"})
	for i := range chapters {
		pkg.Spine.ItemRefs = append(pkg.Spine.ItemRefs, opfSpineItemRef{IDRef: chapterID(i + 1)})
	}

	return marshalXML(pkg)
}

func buildNCX(meta Metadata, chapters []Chapter) []byte {
	doc := ncx{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Head: ncxHead{
			Metas: []ncxMeta{
				{Name: "dtb:uid", Content: meta.Identifier},
				{Name: "dtb:depth", Content: "1"},
			},
		},
		Title: ncxTitle{Text: meta.Title},
	}

	// One navPoint per chapter; playOrder is the 1-based chapter
	// position. The index page is deliberately absent here.
	for i, ch := range chapters {
		doc.NavMap.Points = append(doc.NavMap.Points, ncxNavPoint{
			ID:        chapterID(i + 1),
			PlayOrder: i + 1,
			Label:     ncxLabel{Text: ch.Title},
			Content:   ncxContent{Src: chapterHref(i + 1)},
		})
	}

	return marshalXML(doc)
}

// buildIndex synthesizes the human-visible index page: every chapter
// title linked to its content document.
func buildIndex(meta Metadata, chapters []Chapter) []byte {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	sb.WriteString("<head><title>" + escapeText(meta.Title) + "</title></head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("<h1>" + escapeText(meta.Title) + "</h1>\n")
	sb.WriteString("<nav>\n<ol>\n")
	for i, ch := range chapters {
		sb.WriteString(fmt.Sprintf("<li><a href=%q>%s</a></li>\n", chapterHref(i+1), escapeText(ch.Title)))
	}
	sb.WriteString("</ol>\n</nav>\n")
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String())
}

// buildChapterDoc wraps one sanitized chapter body in an XHTML
// document, the title as a heading above the body.
func buildChapterDoc(ch Chapter) []byte {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml">` + "\n")
	sb.WriteString("<head><title>" + escapeText(ch.Title) + "</title></head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("<h1>" + escapeText(ch.Title) + "</h1>\n")
	sb.WriteString(ch.Body)
	sb.WriteString("\n</body>\n</html>\n")
	return []byte(sb.String())
}

func marshalXML(v interface{}) []byte {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		// Marshaling fixed struct shapes cannot fail at runtime.
		panic(err)
	}
	return append([]byte(xmlHeader), append(data, '\n')...)
}

func escapeText(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
