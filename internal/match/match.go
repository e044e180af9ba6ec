// Package match holds the membership tests of content lists.
package match

import (
	"strings"

	"github.com/jacoelho/contentlist/pkg/dom"
)

// Wildcard is the tag token that matches every element.
const Wildcard = "*"

// Predicate decides list membership. It only reads element state.
type Predicate interface {
	// Matches reports whether el belongs to the list.
	Matches(el *dom.Node) bool
	// DependsOnAttributes reports whether attribute changes may flip membership.
	DependsOnAttributes() bool
	// Release frees data owned by the predicate. Matches must not be called afterwards.
	Release()
}

// Tag matches by namespace and name.
type Tag struct {
	htmlName     string
	xmlName      string
	namespace    dom.NamespaceID
	matchAll     bool
	htmlDocument bool
}

// NewTag builds a tag predicate. ns may be dom.NamespaceUnknown (match the
// qualified name in any namespace) or dom.NamespaceWildcard (match the local
// name in any namespace). htmlDocument enables lowercased matching against
// HTML elements for those two; a specific namespace always matches the
// literal name.
func NewTag(ns dom.NamespaceID, name string, htmlDocument bool) *Tag {
	return &Tag{
		namespace:    ns,
		xmlName:      name,
		htmlName:     asciiLower(name),
		matchAll:     name == Wildcard,
		htmlDocument: htmlDocument,
	}
}

// Namespace returns the namespace the predicate was built with.
func (t *Tag) Namespace() dom.NamespaceID { return t.namespace }

// Name returns the literal name token.
func (t *Tag) Name() string { return t.xmlName }

// Matches implements Predicate.
func (t *Tag) Matches(el *dom.Node) bool {
	if !el.IsElement() {
		return false
	}
	switch t.namespace {
	case dom.NamespaceUnknown:
		return t.matchAll || el.QualifiedName() == t.nameFor(el)
	case dom.NamespaceWildcard:
		return t.matchAll || el.LocalName() == t.nameFor(el)
	default:
		// An explicit namespace compares the literal token.
		if el.NamespaceID() != t.namespace {
			return false
		}
		return t.matchAll || el.LocalName() == t.xmlName
	}
}

func (t *Tag) nameFor(el *dom.Node) string {
	if t.htmlDocument && el.IsHTMLElement() {
		return t.htmlName
	}
	return t.xmlName
}

// DependsOnAttributes implements Predicate. Tag membership never depends on attributes.
func (t *Tag) DependsOnAttributes() bool { return false }

// Release implements Predicate.
func (t *Tag) Release() {}

// asciiLower lowercases ASCII letters only, leaving other runes untouched.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			return strings.Map(func(r rune) rune {
				if 'A' <= r && r <= 'Z' {
					return r + ('a' - 'A')
				}
				return r
			}, s)
		}
	}
	return s
}
