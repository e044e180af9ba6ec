package dom

import (
	"strings"
	"sync/atomic"
)

// NodeType classifies nodes in the tree.
type NodeType int

const (
	// ElementNode identifies an element.
	ElementNode NodeType = 1
	// TextNode identifies character data.
	TextNode NodeType = 3
	// CommentNode identifies a comment.
	CommentNode NodeType = 8
	// DocumentNode identifies the node owning the document element.
	DocumentNode NodeType = 9
)

var serials atomic.Uint64

// Attr is one attribute of an element.
type Attr struct {
	Namespace NamespaceID
	Prefix    string
	Local     string
	Value     string
}

// Name returns the qualified attribute name.
func (a Attr) Name() string {
	if a.Prefix == "" {
		return a.Local
	}
	return a.Prefix + ":" + a.Local
}

// Node is a document, element, text or comment node. The zero value is not
// usable; nodes are created through a Document.
type Node struct {
	doc       *Document
	parent    *Node
	first     *Node
	last      *Node
	prev      *Node
	next      *Node
	observers []observerEntry
	attrs     []Attr
	anonymous []*Node
	local     string
	prefix    string
	data      string
	serial    uint64
	typ       NodeType
	namespace NamespaceID
	// anonymousRoot marks the root of a subtree attached to parent without
	// being one of its children.
	anonymousRoot bool
	destroyed     bool
}

func newNode(doc *Document, typ NodeType) *Node {
	return &Node{doc: doc, typ: typ, serial: serials.Add(1)}
}

// Serial returns a process-unique identity for the node.
func (n *Node) Serial() uint64 {
	if n == nil {
		return 0
	}
	return n.serial
}

// Type returns the node type.
func (n *Node) Type() NodeType {
	if n == nil {
		return 0
	}
	return n.typ
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool {
	return n != nil && n.typ == ElementNode
}

// OwnerDocument returns the document that created n.
func (n *Node) OwnerDocument() *Document {
	if n == nil {
		return nil
	}
	return n.doc
}

// NamespaceID returns the element namespace.
func (n *Node) NamespaceID() NamespaceID {
	if n == nil {
		return NamespaceNone
	}
	return n.namespace
}

// NamespaceURI returns the element namespace URI.
func (n *Node) NamespaceURI() string {
	return NamespaceURI(n.NamespaceID())
}

// LocalName returns the element local name.
func (n *Node) LocalName() string {
	if n == nil {
		return ""
	}
	return n.local
}

// Prefix returns the element prefix as written.
func (n *Node) Prefix() string {
	if n == nil {
		return ""
	}
	return n.prefix
}

// QualifiedName returns prefix:local, or local when there is no prefix.
func (n *Node) QualifiedName() string {
	if n == nil {
		return ""
	}
	if n.prefix == "" {
		return n.local
	}
	return n.prefix + ":" + n.local
}

// NodeName returns the qualified name for elements and a fixed name otherwise.
func (n *Node) NodeName() string {
	switch n.Type() {
	case ElementNode:
		if n.IsHTMLElement() && n.doc.IsHTML() {
			return strings.ToUpper(n.QualifiedName())
		}
		return n.QualifiedName()
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DocumentNode:
		return "#document"
	default:
		return ""
	}
}

// Data returns the character data of text and comment nodes.
func (n *Node) Data() string {
	if n == nil {
		return ""
	}
	return n.data
}

// IsHTMLElement reports whether n is an element in the XHTML namespace.
func (n *Node) IsHTMLElement() bool {
	return n.IsElement() && n.namespace == NamespaceXHTML
}

// Destroyed reports whether Destroy has run for n.
func (n *Node) Destroyed() bool {
	return n != nil && n.destroyed
}

// Parent returns the parent node, or the host for an anonymous subtree root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// FirstChild returns the first child.
func (n *Node) FirstChild() *Node {
	if n == nil {
		return nil
	}
	return n.first
}

// LastChild returns the last child.
func (n *Node) LastChild() *Node {
	if n == nil {
		return nil
	}
	return n.last
}

// NextSibling returns the following sibling.
func (n *Node) NextSibling() *Node {
	if n == nil {
		return nil
	}
	return n.next
}

// PreviousSibling returns the preceding sibling.
func (n *Node) PreviousSibling() *Node {
	if n == nil {
		return nil
	}
	return n.prev
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild(); c != nil; c = c.next {
		out = append(out, c)
	}
	return out
}

// NextNode returns the node after n in pre-order, staying inside the subtree
// rooted at within. It returns nil once the subtree is exhausted. Anonymous
// subtrees are never entered from outside.
func (n *Node) NextNode(within *Node) *Node {
	if n == nil {
		return nil
	}
	if n.first != nil {
		return n.first
	}
	for cur := n; cur != nil && cur != within; cur = cur.parent {
		if cur.next != nil {
			return cur.next
		}
		if cur.anonymousRoot {
			return nil
		}
	}
	return nil
}

// Contains reports whether other is n or a descendant of n, including
// through anonymous subtrees.
func (n *Node) Contains(other *Node) bool {
	if n == nil {
		return false
	}
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Attribute returns the value of the null-namespace attribute name.
func (n *Node) Attribute(name string) (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	name = n.attrName(name)
	for _, a := range n.attrs {
		if a.Namespace == NamespaceNone && a.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttributeNS returns the value of the attribute (ns, local).
func (n *Node) AttributeNS(ns NamespaceID, local string) (string, bool) {
	if !n.IsElement() {
		return "", false
	}
	for _, a := range n.attrs {
		if a.Namespace == ns && a.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// GetAttribute returns the attribute value or "".
func (n *Node) GetAttribute(name string) string {
	v, _ := n.Attribute(name)
	return v
}

// HasAttribute reports whether the null-namespace attribute name is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.Attribute(name)
	return ok
}

// Attributes returns a copy of the element attributes.
func (n *Node) Attributes() []Attr {
	if !n.IsElement() {
		return nil
	}
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.GetAttribute("id")
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.typ == TextNode || n.typ == CommentNode {
		return n.data
	}
	var sb strings.Builder
	for cur := n.first; cur != nil; cur = cur.NextNode(n) {
		if cur.typ == TextNode {
			sb.WriteString(cur.data)
		}
	}
	return sb.String()
}

// HTML elements of an HTML document store attribute names lowercased.
func (n *Node) attrName(name string) string {
	if n.IsHTMLElement() && n.doc.IsHTML() {
		return strings.ToLower(name)
	}
	return name
}
