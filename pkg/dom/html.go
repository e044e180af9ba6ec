package dom

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// ParseHTML builds an HTML document from r using the HTML5 tree builder.
// Foreign content keeps its SVG or MathML namespace.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := NewHTMLDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := convertHTML(doc, c); n != nil {
			doc.node.link(n, nil)
		}
	}
	return doc, nil
}

func convertHTML(doc *Document, src *html.Node) *Node {
	var n *Node
	switch src.Type {
	case html.ElementNode:
		n = doc.createElement(htmlNamespace(src.Namespace), "", src.Data)
		n.attrs = make([]Attr, 0, len(src.Attr))
		for _, a := range src.Attr {
			n.attrs = append(n.attrs, htmlAttr(a))
		}
	case html.TextNode:
		n = doc.CreateTextNode(src.Data)
	case html.CommentNode:
		n = doc.CreateComment(src.Data)
	default:
		return nil
	}
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if child := convertHTML(doc, c); child != nil {
			n.link(child, nil)
		}
	}
	return n
}

func htmlNamespace(ns string) NamespaceID {
	switch ns {
	case "":
		return NamespaceXHTML
	case "svg":
		return NamespaceSVG
	case "math":
		return NamespaceMathML
	default:
		return RegisterNamespace(ns)
	}
}

func htmlAttr(a html.Attribute) Attr {
	switch a.Namespace {
	case "":
		return Attr{Namespace: NamespaceNone, Local: a.Key, Value: a.Val}
	case "xlink":
		return Attr{Namespace: NamespaceXLink, Prefix: "xlink", Local: a.Key, Value: a.Val}
	case "xml":
		return Attr{Namespace: NamespaceXML, Prefix: "xml", Local: a.Key, Value: a.Val}
	case "xmlns":
		return Attr{Namespace: NamespaceXMLNS, Prefix: "xmlns", Local: a.Key, Value: a.Val}
	default:
		return Attr{Namespace: RegisterNamespace(a.Namespace), Local: a.Key, Value: a.Val}
	}
}
