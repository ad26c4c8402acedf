// Package dom provides a server-held DOM over golang.org/x/net/html: fragment
// parsing, node construction and mutation helpers, and a CSS-subset selector.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps a parsed HTML fragment. Root is a synthetic body element
// holding the fragment's top-level nodes; it is never serialized itself.
type Document struct {
	Root *html.Node
}

// ParseFragment parses markup in a body context, preserving the fragment
// as authored (no html/head/body synthesis in the output).
func ParseFragment(markup string) (*Document, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, err
	}

	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	return &Document{Root: root}, nil
}

// Render serializes the fragment's top-level nodes back to markup.
func (d *Document) Render() string {
	var sb strings.Builder
	for c := d.Root.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&sb, c)
	}
	return sb.String()
}

// OuterHTML serializes a single node.
func OuterHTML(n *html.Node) string {
	var sb strings.Builder
	html.Render(&sb, n)
	return sb.String()
}

// NewElement creates a detached element node. Attributes are given as
// alternating key/value pairs.
func NewElement(tag string, attrPairs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		SetAttr(n, attrPairs[i], attrPairs[i+1])
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// GetAttr returns the attribute value and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the attribute value, or empty string when absent.
func Attr(n *html.Node, key string) string {
	v, _ := GetAttr(n, key)
	return v
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node's class list contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends a class name if not already present.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	cls := Attr(n, "class")
	if cls == "" {
		SetAttr(n, "class", name)
		return
	}
	SetAttr(n, "class", cls+" "+name)
}

// RemoveClass removes a class name, dropping the attribute when empty.
func RemoveClass(n *html.Node, name string) {
	fields := strings.Fields(Attr(n, "class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// TextContent concatenates all descendant text.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// SetText replaces a node's children with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	n.AppendChild(NewText(text))
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// Detach removes n from its parent. Safe on detached nodes.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts newNode as the next sibling of ref.
func InsertAfter(ref, newNode *html.Node) {
	if ref.Parent == nil {
		return
	}
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(newNode, ref.NextSibling)
		return
	}
	ref.Parent.AppendChild(newNode)
}

// Contains reports whether n is root or a descendant of root. Used by
// asynchronous completion callbacks to detect stale work: a node removed
// from the held tree must never be mutated again.
func Contains(root, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element with the given tag name.
func IsElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}
