package contentlist

import (
	"github.com/jacoelho/contentlist/internal/livelist"
	"github.com/jacoelho/contentlist/internal/match"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// FuncKind describes a family of function-predicate queries. Kinds are
// compared by pointer: declare each one once.
type FuncKind = match.FuncKind

// MatchFunc is the membership test of a FuncKind.
type MatchFunc = match.MatchFunc

// Built-in function kinds.
var (
	// NameAttribute selects HTML elements by their name attribute.
	NameAttribute = match.NameAttribute
	// ClassNames selects elements carrying all of a set of classes.
	ClassNames = match.ClassNames
)

// GetElementsByTagName returns the shared list of descendants of root whose
// qualified name is name, or every element for "*". HTML elements of an
// HTML document compare against the lowercased name. A nil or destroyed
// root yields a nil list, which behaves as empty.
func (e *Engine) GetElementsByTagName(root *dom.Node, name string) *List {
	return e.tagList(root, dom.NamespaceUnknown, name)
}

// GetElementsByTagNameNS returns the shared list of descendants of root in
// namespaceURI with local name local. "*" is a wildcard for either part.
func (e *Engine) GetElementsByTagNameNS(root *dom.Node, namespaceURI, local string) *List {
	ns := dom.NamespaceWildcard
	if namespaceURI != match.Wildcard {
		ns = dom.RegisterNamespace(namespaceURI)
	}
	return e.tagList(root, ns, local)
}

// GetElementsByName returns the shared list of HTML elements under root
// whose name attribute equals name.
func (e *Engine) GetElementsByName(root *dom.Node, name string) *List {
	return e.funcList(root, match.NameAttribute, name)
}

// GetElementsByClassName returns the shared list of elements under root
// carrying every class in the whitespace separated classes.
func (e *Engine) GetElementsByClassName(root *dom.Node, classes string) *List {
	return e.funcList(root, match.ClassNames, classes)
}

// GetFuncList returns the shared list of elements under root accepted by
// kind for arg.
func (e *Engine) GetFuncList(root *dom.Node, kind *FuncKind, arg string) *List {
	return e.funcList(root, kind, arg)
}

// Children returns a live list of the element children of root. It is not
// shared.
func (e *Engine) Children(root *dom.Node) *List {
	if e == nil || !usableRoot(root) {
		return nil
	}
	return e.newList(livelist.Config{
		Root:      root,
		Predicate: match.NewTag(dom.NamespaceUnknown, match.Wildcard, root.OwnerDocument().IsHTML()),
		Label:     "children",
		Live:      true,
	}).Retain()
}

// StaticTagList returns a snapshot of GetElementsByTagName taken on first
// read. It never observes the tree and is not shared.
func (e *Engine) StaticTagList(root *dom.Node, name string) *List {
	if e == nil || !usableRoot(root) {
		return nil
	}
	return e.newList(livelist.Config{
		Root:      root,
		Predicate: match.NewTag(dom.NamespaceUnknown, name, root.OwnerDocument().IsHTML()),
		Label:     "static(" + name + ")",
		Deep:      true,
	}).Retain()
}
