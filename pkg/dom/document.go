package dom

import "strings"

// Document owns a node tree. An HTML document lowercases names of HTML
// elements it creates and enables HTML-cased matching for queries.
type Document struct {
	node    *Node
	pending []func()
	html    bool
	flushes int
}

// NewDocument returns an empty XML document.
func NewDocument() *Document {
	return newDocument(false)
}

// NewHTMLDocument returns an empty HTML document.
func NewHTMLDocument() *Document {
	return newDocument(true)
}

func newDocument(html bool) *Document {
	d := &Document{html: html}
	d.node = newNode(d, DocumentNode)
	return d
}

// IsHTML reports whether d is an HTML document.
func (d *Document) IsHTML() bool {
	return d != nil && d.html
}

// Node returns the document node, the root of the tree.
func (d *Document) Node() *Node {
	if d == nil {
		return nil
	}
	return d.node
}

// DocumentElement returns the first element child of the document node.
func (d *Document) DocumentElement() *Node {
	for c := d.Node().FirstChild(); c != nil; c = c.next {
		if c.IsElement() {
			return c
		}
	}
	return nil
}

// CreateElement creates an element. In an HTML document the element is
// placed in the XHTML namespace and its name is lowercased.
func (d *Document) CreateElement(name string) *Node {
	if d.IsHTML() {
		return d.createElement(NamespaceXHTML, "", strings.ToLower(name))
	}
	return d.createElement(NamespaceNone, "", name)
}

// CreateElementNS creates an element in namespaceURI from a qualified name.
func (d *Document) CreateElementNS(namespaceURI, qualifiedName string) *Node {
	prefix, local := splitQName(qualifiedName)
	return d.createElement(RegisterNamespace(namespaceURI), prefix, local)
}

func (d *Document) createElement(ns NamespaceID, prefix, local string) *Node {
	n := newNode(d, ElementNode)
	n.namespace = ns
	n.prefix = prefix
	n.local = local
	return n
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(data string) *Node {
	n := newNode(d, TextNode)
	n.data = data
	return n
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(data string) *Node {
	n := newNode(d, CommentNode)
	n.data = data
	return n
}

// Defer queues fn as a pending change. Pending changes run on Flush.
func (d *Document) Defer(fn func()) {
	if d == nil || fn == nil {
		return
	}
	d.pending = append(d.pending, fn)
}

// PendingChanges reports how many deferred changes are queued.
func (d *Document) PendingChanges() int {
	if d == nil {
		return 0
	}
	return len(d.pending)
}

// Flushes reports how many times Flush ran queued work.
func (d *Document) Flushes() int {
	if d == nil {
		return 0
	}
	return d.flushes
}

// Flush synchronously runs pending changes in FIFO order, including changes
// queued while flushing. Mutation observers run from inside Flush.
func (d *Document) Flush() {
	if d == nil || len(d.pending) == 0 {
		return
	}
	d.flushes++
	for len(d.pending) > 0 {
		fn := d.pending[0]
		d.pending[0] = nil
		d.pending = d.pending[1:]
		fn()
	}
	d.pending = nil
}

func splitQName(qualifiedName string) (string, string) {
	if i := strings.IndexByte(qualifiedName, ':'); i > 0 {
		return qualifiedName[:i], qualifiedName[i+1:]
	}
	return "", qualifiedName
}
