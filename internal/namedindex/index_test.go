package namedindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoelho/contentlist/pkg/dom"
)

func elements(doc *dom.Document, pairs ...[2]string) []*dom.Node {
	var out []*dom.Node
	for _, s := range pairs {
		el := doc.CreateElement("span")
		if s[0] != "" {
			el.SetAttribute("id", s[0])
		}
		if s[1] != "" {
			el.SetAttribute("name", s[1])
		}
		out = append(out, el)
	}
	return out
}

func TestBuildFirstMatchWins(t *testing.T) {
	doc := dom.NewHTMLDocument()
	els := elements(doc, [2]string{"x", ""}, [2]string{"x", "y"}, [2]string{"", "x"})

	var ix Index
	require.False(t, ix.Valid())
	require.Nil(t, ix.Lookup("x"))

	ix.Build(els)
	require.True(t, ix.Valid())
	require.Same(t, els[0], ix.Lookup("x"))
	require.Same(t, els[1], ix.Lookup("y"))
	require.Nil(t, ix.Lookup(""))
	require.Equal(t, 2, ix.Len())
}

func TestNameOnlyForHTMLElements(t *testing.T) {
	doc := dom.NewDocument()
	el := doc.CreateElement("input")
	el.SetAttribute("name", "q")

	var ix Index
	ix.Build([]*dom.Node{el})
	require.Nil(t, ix.Lookup("q"))
	require.Empty(t, SupportedNames([]*dom.Node{el}))
}

func TestAddPreservesFirstMatch(t *testing.T) {
	doc := dom.NewHTMLDocument()
	els := elements(doc, [2]string{"a", ""}, [2]string{"a", "b"})

	var ix Index
	ix.Add(els[0])
	require.False(t, ix.Valid(), "Add on an unbuilt index stays invalid")

	ix.Build(els[:1])
	ix.Add(els[1])
	require.Same(t, els[0], ix.Lookup("a"))
	require.Same(t, els[1], ix.Lookup("b"))
}

func TestInvalidation(t *testing.T) {
	doc := dom.NewHTMLDocument()
	els := elements(doc, [2]string{"a", ""}, [2]string{"", ""})

	var ix Index
	ix.Build(els)
	ix.InvalidateForRemoval(els[1])
	require.True(t, ix.Valid(), "removing an unnamed element keeps the index")
	ix.InvalidateForRemoval(els[0])
	require.False(t, ix.Valid())

	ix.Build(els)
	ix.InvalidateForAttribute(els[1], dom.NamespaceNone, "class")
	require.True(t, ix.Valid())
	ix.InvalidateForAttribute(els[1], dom.RegisterNamespace("urn:other"), "id")
	require.True(t, ix.Valid())
	ix.InvalidateForAttribute(els[1], dom.NamespaceNone, "name")
	require.False(t, ix.Valid())

	ix.Build(els)
	ix.InvalidateForAttribute(els[0], dom.NamespaceNone, "id")
	require.False(t, ix.Valid())
}

func TestSupportedNamesOrder(t *testing.T) {
	doc := dom.NewHTMLDocument()
	els := elements(doc, [2]string{"b", "a"}, [2]string{"a", "c"}, [2]string{"", "b"})
	require.Equal(t, []string{"b", "a", "c"}, SupportedNames(els))
}

func TestNilIndex(t *testing.T) {
	var ix *Index
	require.False(t, ix.Valid())
	require.Zero(t, ix.Len())
	require.Nil(t, ix.Lookup("x"))
	ix.Build(nil)
	ix.Invalidate()
	ix.InvalidateForRemoval(nil)
}
