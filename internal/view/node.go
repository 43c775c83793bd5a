// Package view builds HTML as a node tree instead of interpolated strings.
// Nodes are golang.org/x/net/html nodes, so escaping happens once, at render time.
package view

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Option mutates a node under construction
type Option func(*html.Node)

// El creates an element node
func El(tag string, opts ...Option) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Text creates a text node
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ID sets the id attribute
func ID(id string) Option {
	return Attr("id", id)
}

// Class sets the class attribute, skipping empty names
func Class(classes ...string) Option {
	return func(n *html.Node) {
		for _, c := range classes {
			AddClass(n, c)
		}
	}
}

// Attr sets an attribute
func Attr(key, val string) Option {
	return func(n *html.Node) {
		SetAttr(n, key, val)
	}
}

// Content appends a text child
func Content(s string) Option {
	return func(n *html.Node) {
		n.AppendChild(Text(s))
	}
}

// Kids appends children, skipping nil
func Kids(children ...*html.Node) Option {
	return func(n *html.Node) {
		for _, c := range children {
			if c != nil {
				n.AppendChild(c)
			}
		}
	}
}

// If applies opt only when cond holds
func If(cond bool, opt Option) Option {
	if !cond {
		return nil
	}
	return opt
}

func GetAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func classes(n *html.Node) []string {
	v, _ := GetAttr(n, "class")
	return strings.Fields(v)
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if class == "" || HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(strings.Join(append(classes(n), class), " ")))
}

func RemoveClass(n *html.Node, class string) {
	var kept []string
	for _, c := range classes(n) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// Hide marks a node hidden; Show undoes it
func Hide(n *html.Node) {
	SetAttr(n, "hidden", "")
}

func Show(n *html.Node) {
	RemoveAttr(n, "hidden")
}

func IsHidden(n *html.Node) bool {
	_, ok := GetAttr(n, "hidden")
	return ok
}

// Clear removes every child of n
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Replace swaps the children of n for the given nodes
func Replace(n *html.Node, children ...*html.Node) {
	Clear(n)
	Kids(children...)(n)
}

// SetText replaces the children of n with a single text node
func SetText(n *html.Node, s string) {
	Replace(n, Text(s))
}

// TextContent concatenates all descendant text
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// Detach removes n from its parent, if any
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Walk visits n and its descendants in document order until fn returns false
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node under root matching pred
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node under root matching pred
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// IsElement matches element nodes with the given tag
func IsElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// HasID matches element nodes carrying id
func HasID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := GetAttr(n, "id")
		return ok && v == id
	}
}

// WithClass matches element nodes carrying class
func WithClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, class)
	}
}
