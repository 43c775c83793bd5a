package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEscapesText(t *testing.T) {
	doc := NewDocument("t")
	doc.Append(El("p", ID("x"), Content(`<script>alert("x")</script>`)))

	out, err := doc.HTML()
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func TestClasses(t *testing.T) {
	n := El("a", Class("nav-link", "", "nav-link"))
	v, _ := GetAttr(n, "class")
	assert.Equal(t, "nav-link", v)

	AddClass(n, "active")
	assert.True(t, HasClass(n, "active"))
	RemoveClass(n, "active")
	assert.False(t, HasClass(n, "active"))
	RemoveClass(n, "nav-link")
	_, ok := GetAttr(n, "class")
	assert.False(t, ok)
}

func TestHideShow(t *testing.T) {
	n := El("div")
	Hide(n)
	Hide(n)
	assert.True(t, IsHidden(n))
	assert.Len(t, n.Attr, 1)
	Show(n)
	assert.False(t, IsHidden(n))
}

func TestDocumentIDs(t *testing.T) {
	doc := NewDocument("t")
	doc.Append(El("div", ID("m")))
	doc.Append(El("div", ID("m")))
	assert.Equal(t, 2, doc.CountID("m"))

	assert.Equal(t, 2, doc.RemoveID("m"))
	assert.Equal(t, 0, doc.CountID("m"))
	assert.Nil(t, doc.ByID("m"))
}

func TestReplaceAndText(t *testing.T) {
	tbody := El("tbody", Kids(El("tr"), El("tr")))
	Replace(tbody, El("tr", Kids(El("td", Content("a")), El("td", Content("b")))))
	assert.Len(t, FindAll(tbody, IsElement("tr")), 1)
	assert.Equal(t, "ab", TextContent(tbody))

	SetText(tbody, "x")
	assert.Equal(t, "x", TextContent(tbody))
}
