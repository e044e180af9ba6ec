package dom

import (
	"math"
	"sync"
)

// Common XML namespaces.
const (
	XMLNamespace    = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace  = "http://www.w3.org/2000/xmlns/"
	XHTMLNamespace  = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
	XLinkNamespace  = "http://www.w3.org/1999/xlink"
)

// NamespaceID is a process-wide small integer standing in for a namespace URI.
type NamespaceID int32

const (
	// NamespaceWildcard matches elements in any namespace.
	NamespaceWildcard NamespaceID = math.MinInt32
	// NamespaceUnknown requests qualified-name matching without a namespace test.
	NamespaceUnknown NamespaceID = -1
	// NamespaceNone is the null namespace.
	NamespaceNone NamespaceID = 0
	// NamespaceXMLNS is XMLNSNamespace.
	NamespaceXMLNS NamespaceID = 1
	// NamespaceXML is XMLNamespace.
	NamespaceXML NamespaceID = 2
	// NamespaceXHTML is XHTMLNamespace.
	NamespaceXHTML NamespaceID = 3
	// NamespaceXLink is XLinkNamespace.
	NamespaceXLink NamespaceID = 4
	// NamespaceSVG is SVGNamespace.
	NamespaceSVG NamespaceID = 5
	// NamespaceMathML is MathMLNamespace.
	NamespaceMathML NamespaceID = 6
)

type namespaceRegistry struct {
	mu    sync.Mutex
	ids   map[string]NamespaceID
	uris  []string
	ready bool
}

var namespaces namespaceRegistry

func (r *namespaceRegistry) init() {
	if r.ready {
		return
	}
	r.uris = []string{"", XMLNSNamespace, XMLNamespace, XHTMLNamespace, XLinkNamespace, SVGNamespace, MathMLNamespace}
	r.ids = make(map[string]NamespaceID, len(r.uris)+8)
	for i, uri := range r.uris {
		r.ids[uri] = NamespaceID(i)
	}
	r.ready = true
}

// RegisterNamespace returns the ID for uri, assigning a new one on first use.
// The empty URI maps to NamespaceNone.
func RegisterNamespace(uri string) NamespaceID {
	namespaces.mu.Lock()
	defer namespaces.mu.Unlock()
	namespaces.init()
	if id, ok := namespaces.ids[uri]; ok {
		return id
	}
	id := NamespaceID(len(namespaces.uris))
	namespaces.uris = append(namespaces.uris, uri)
	namespaces.ids[uri] = id
	return id
}

// LookupNamespace returns the ID for uri without registering it.
func LookupNamespace(uri string) (NamespaceID, bool) {
	namespaces.mu.Lock()
	defer namespaces.mu.Unlock()
	namespaces.init()
	id, ok := namespaces.ids[uri]
	return id, ok
}

// NamespaceURI returns the URI registered for id, or "" for sentinels and unknown IDs.
func NamespaceURI(id NamespaceID) string {
	if id < 0 {
		return ""
	}
	namespaces.mu.Lock()
	defer namespaces.mu.Unlock()
	namespaces.init()
	if int(id) >= len(namespaces.uris) {
		return ""
	}
	return namespaces.uris[id]
}
