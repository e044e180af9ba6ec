// Package namedindex maps id and name values to the first element carrying
// them, in list order.
package namedindex

import (
	"iter"

	"github.com/jacoelho/contentlist/internal/xiter"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// Index is a lazily built name lookup table. The zero value is an invalid
// (unbuilt) index.
type Index struct {
	entries map[string]*dom.Node
	valid   bool
}

// Valid reports whether the index reflects the current list contents.
func (ix *Index) Valid() bool {
	return ix != nil && ix.valid
}

// Len reports the number of distinct names.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Build replaces the index with the names of elements, first match winning.
func (ix *Index) Build(elements []*dom.Node) {
	if ix == nil {
		return
	}
	if ix.entries == nil {
		ix.entries = make(map[string]*dom.Node, len(elements))
	} else {
		clear(ix.entries)
	}
	for _, el := range elements {
		ix.add(el)
	}
	ix.valid = true
}

// Add records the names of an element appended after all indexed elements.
// It is a no-op on an invalid index.
func (ix *Index) Add(el *dom.Node) {
	if !ix.Valid() {
		return
	}
	ix.add(el)
}

func (ix *Index) add(el *dom.Node) {
	for key := range Keys(el) {
		if _, ok := ix.entries[key]; !ok {
			ix.entries[key] = el
		}
	}
}

// Lookup returns the first element whose id, or exposed name, equals name.
func (ix *Index) Lookup(name string) *dom.Node {
	if !ix.Valid() || name == "" {
		return nil
	}
	return ix.entries[name]
}

// Invalidate drops the index. It is rebuilt on the next lookup.
func (ix *Index) Invalidate() {
	if ix == nil {
		return
	}
	ix.valid = false
	clear(ix.entries)
}

// InvalidateForRemoval drops the index if el could be one of its entries.
func (ix *Index) InvalidateForRemoval(el *dom.Node) {
	if !ix.Valid() {
		return
	}
	if hasKeys(el) {
		ix.Invalidate()
	}
}

// InvalidateForAttribute drops the index when the changed attribute feeds it.
func (ix *Index) InvalidateForAttribute(el *dom.Node, ns dom.NamespaceID, local string) {
	if !ix.Valid() || ns != dom.NamespaceNone {
		return
	}
	switch local {
	case "id":
		ix.Invalidate()
	case "name":
		if el.IsHTMLElement() {
			ix.Invalidate()
		}
	}
}

// Keys yields the id of el and, for HTML elements, its name. Empty values
// are skipped.
func Keys(el *dom.Node) iter.Seq[string] {
	return func(yield func(string) bool) {
		if id, ok := el.Attribute("id"); ok && id != "" {
			if !yield(id) {
				return
			}
		}
		if !el.IsHTMLElement() {
			return
		}
		if name, ok := el.Attribute("name"); ok && name != "" {
			yield(name)
		}
	}
}

func hasKeys(el *dom.Node) bool {
	for range Keys(el) {
		return true
	}
	return false
}

// SupportedNames returns every distinct id and exposed name of elements in
// first-seen order.
func SupportedNames(elements []*dom.Node) []string {
	return xiter.Unique(func(yield func(string) bool) {
		for _, el := range elements {
			for key := range Keys(el) {
				if !yield(key) {
					return
				}
			}
		}
	})
}
