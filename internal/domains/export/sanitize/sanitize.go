// Package sanitize turns one chapter's raw authoring markup into
// book-safe XHTML. It is content-lossless for visible text and
// decoration-lossy: editor chrome (resize handles, spellcheck flags,
// search highlights) never survives into an exported book.
package sanitize

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockKind is the typed classification of a node. The editor's
// dynamic markup collapses into three variants the transform pass can
// reason about.
type blockKind int

const (
	// blockOpaque passes through unchanged.
	blockOpaque blockKind = iota
	// blockMedia is the editor's resizable-image composite: an image
	// plus interactive handles and an author-chosen size.
	blockMedia
	// blockDecoration is a transient editor span (live spellcheck,
	// search-match highlight) wrapping plain text.
	blockDecoration
)

// mediaBlockMarker is the attribute the editor stamps on its
// resizable-image wrapper.
const mediaBlockMarker = "resizable-media"

// decorationClasses are the class tokens of transient editor spans.
var decorationClasses = map[string]bool{
	"spellcheck-error":         true,
	"search-highlight":         true,
	"search-highlight-current": true,
}

// Sanitize normalizes raw editor HTML into book-safe markup. It never
// fails: input the parser cannot make sense of degrades to escaped
// plain text. Applying Sanitize to its own output is a no-op.
func Sanitize(rawHTML string) string {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), body)
	if err != nil {
		return "<p>" + html.EscapeString(rawHTML) + "</p>"
	}

	for _, n := range nodes {
		body.AppendChild(n)
	}

	transform(body)

	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "<p>" + html.EscapeString(rawHTML) + "</p>"
		}
	}

	return sb.String()
}

// classify decides which variant a node is.
func classify(n *html.Node) blockKind {
	if n.Type != html.ElementNode {
		return blockOpaque
	}

	if attr(n, "data-type") == mediaBlockMarker {
		return blockMedia
	}

	if n.DataAtom == atom.Span {
		for _, cls := range strings.Fields(attr(n, "class")) {
			if decorationClasses[cls] {
				return blockDecoration
			}
		}
	}

	return blockOpaque
}

// transform rewrites the children of n in place, recursing into
// whatever survives.
func transform(n *html.Node) {
	// Snapshot the child list: media and decoration handling splices
	// nodes in and out while we walk.
	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, c := range children {
		switch classify(c) {
		case blockMedia:
			rewriteMediaBlock(n, c)
		case blockDecoration:
			unwrapDecoration(n, c)
		default:
			transform(c)
		}
	}
}

// rewriteMediaBlock freezes the editor's interactive image block into
// a static container: the author's chosen dimensions become the
// container's inline style, the image stretch-fills it, and every
// handle/overlay child is dropped. A block with no image carries no
// content and is removed entirely.
func rewriteMediaBlock(parent, block *html.Node) {
	img := findImage(block)
	if img == nil {
		parent.RemoveChild(block)
		return
	}

	width, height := authorDimensions(block)

	// Only the image is content; every other child is editor chrome.
	img.Parent.RemoveChild(img)
	for block.FirstChild != nil {
		block.RemoveChild(block.FirstChild)
	}
	block.AppendChild(img)

	setAttr(block, "style", fmt.Sprintf("width:%s;height:%s", width, height))
	removeAttr(block, "data-width")
	removeAttr(block, "data-height")
	removeAttr(block, "contenteditable")
	removeAttr(block, "draggable")

	// Stretch-fill, with legacy attributes for readers that ignore CSS.
	setAttr(img, "style", "width:100%;height:100%")
	setAttr(img, "width", legacyDimension(width))
	setAttr(img, "height", legacyDimension(height))
}

// unwrapDecoration splices the span's text into the parent at the same
// position and discards the span itself.
func unwrapDecoration(parent, span *html.Node) {
	text := &html.Node{
		Type: html.TextNode,
		Data: textContent(span),
	}
	parent.InsertBefore(text, span)
	parent.RemoveChild(span)
}

// authorDimensions reads the author-chosen size of a media block. The
// inline style wins (it is also what a previous sanitize run wrote),
// then the editor's data attributes, then the stated defaults.
func authorDimensions(block *html.Node) (width, height string) {
	width = styleValue(attr(block, "style"), "width")
	height = styleValue(attr(block, "style"), "height")

	if width == "" {
		width = attr(block, "data-width")
	}
	if height == "" {
		height = attr(block, "data-height")
	}

	if width == "" {
		width = "100%"
	}
	if height == "" {
		height = "auto"
	}
	return width, height
}

// findImage returns the first img descendant of n, or nil.
func findImage(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Img {
			return c
		}
		if img := findImage(c); img != nil {
			return img
		}
	}
	return nil
}

// textContent concatenates every text node under n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// legacyDimension converts a CSS length to the bare value legacy
// width/height attributes expect ("200px" -> "200"). Percentages and
// keywords pass through.
func legacyDimension(v string) string {
	return strings.TrimSuffix(v, "px")
}

// styleValue extracts one property from an inline style string.
func styleValue(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
