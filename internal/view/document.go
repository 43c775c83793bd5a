package view

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
)

// Document is a complete HTML page kept in memory between requests
type Document struct {
	Root *html.Node
	Head *html.Node
	Body *html.Node
}

// NewDocument creates an empty page with the given title
func NewDocument(title string) *Document {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := El("head",
		Kids(
			El("meta", Attr("charset", "utf-8")),
			El("meta", Attr("name", "viewport"), Attr("content", "width=device-width, initial-scale=1.0")),
			El("title", Content(title)),
		),
	)
	body := El("body")
	root.AppendChild(El("html", Attr("lang", "en"), Kids(head, body)))

	return &Document{Root: root, Head: head, Body: body}
}

// ByID returns the first element with the given id
func (d *Document) ByID(id string) *html.Node {
	return Find(d.Root, HasID(id))
}

// CountID counts elements with the given id
func (d *Document) CountID(id string) int {
	return len(FindAll(d.Root, HasID(id)))
}

// RemoveID detaches every element with the given id and reports how many went
func (d *Document) RemoveID(id string) int {
	nodes := FindAll(d.Root, HasID(id))
	for _, n := range nodes {
		Detach(n)
	}
	return len(nodes)
}

// Append adds n at the end of body
func (d *Document) Append(n *html.Node) {
	d.Body.AppendChild(n)
}

// Render writes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// HTML renders the document to a string
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
