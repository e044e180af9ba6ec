package match

import (
	"strings"

	"github.com/jacoelho/contentlist/pkg/dom"
)

// MatchFunc tests el using the namespace, name token and opaque data the
// predicate was built with.
type MatchFunc func(el *dom.Node, ns dom.NamespaceID, token string, data any) bool

// FuncKind describes a family of function predicates. Kinds are compared by
// pointer, so each kind must be declared once and shared.
type FuncKind struct {
	// Match is the membership test.
	Match MatchFunc
	// NewData builds the opaque data from the query argument. Nil keeps the argument itself.
	NewData func(arg string) any
	// DestroyData frees data built by NewData.
	DestroyData func(data any)
	// Name is used in logs and metrics.
	Name string
	// AttributeSensitive marks kinds whose result can change when attributes change.
	AttributeSensitive bool
}

// Func is a predicate backed by a FuncKind and data it owns exclusively.
type Func struct {
	kind      *FuncKind
	data      any
	token     string
	namespace dom.NamespaceID
	released  bool
}

// NewFunc builds a function predicate for arg.
func NewFunc(kind *FuncKind, ns dom.NamespaceID, token, arg string) *Func {
	var data any = arg
	if kind.NewData != nil {
		data = kind.NewData(arg)
	}
	return &Func{kind: kind, namespace: ns, token: token, data: data}
}

// Kind returns the function kind.
func (f *Func) Kind() *FuncKind { return f.kind }

// Data returns the opaque data.
func (f *Func) Data() any { return f.data }

// Matches implements Predicate.
func (f *Func) Matches(el *dom.Node) bool {
	if f.released || !el.IsElement() {
		return false
	}
	return f.kind.Match(el, f.namespace, f.token, f.data)
}

// DependsOnAttributes implements Predicate.
func (f *Func) DependsOnAttributes() bool { return f.kind.AttributeSensitive }

// Release implements Predicate. The data destructor runs at most once.
func (f *Func) Release() {
	if f.released {
		return
	}
	f.released = true
	if f.kind.DestroyData != nil {
		f.kind.DestroyData(f.data)
	}
	f.data = nil
}

// NameAttribute matches HTML elements whose name attribute equals the argument.
var NameAttribute = &FuncKind{
	Name:               "name",
	AttributeSensitive: true,
	Match: func(el *dom.Node, _ dom.NamespaceID, _ string, data any) bool {
		if !el.IsHTMLElement() {
			return false
		}
		v, ok := el.Attribute("name")
		return ok && v == data.(string)
	},
}

// ClassNames matches elements carrying every class in a whitespace separated argument.
var ClassNames = &FuncKind{
	Name:               "class",
	AttributeSensitive: true,
	NewData: func(arg string) any {
		return uniqueTokens(arg)
	},
	Match: func(el *dom.Node, _ dom.NamespaceID, _ string, data any) bool {
		want := data.([]string)
		if len(want) == 0 {
			return false
		}
		have, ok := el.Attribute("class")
		if !ok {
			return false
		}
		classes := strings.Fields(have)
		for _, w := range want {
			found := false
			for _, c := range classes {
				if c == w {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	},
}

func uniqueTokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		dup := false
		for _, seen := range out {
			if seen == f {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}
