package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"unicode"
)

// ParseXML builds an XML document from r. Whitespace outside the document
// element is dropped; comments and text inside it are kept.
func ParseXML(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	doc := NewDocument()

	var stack []*Node
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("parse xml: unexpected element %s after document end", t.Name.Local)
			}
			elem := doc.createElement(RegisterNamespace(t.Name.Space), prefixFor(stack, t), t.Name.Local)
			elem.attrs = convertAttrs(t.Attr)
			parent := doc.node
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			parent.link(elem, nil)
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorableOutsideRoot(string(t)) {
					return nil, fmt.Errorf("parse xml: unexpected character data outside root element")
				}
				continue
			}
			parent := stack[len(stack)-1]
			if last := parent.last; last != nil && last.typ == TextNode {
				last.data += string(t)
				continue
			}
			parent.link(doc.CreateTextNode(string(t)), nil)

		case xml.Comment:
			parent := doc.node
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			parent.link(doc.CreateComment(string(t)), nil)
		}
	}

	if doc.DocumentElement() == nil {
		return nil, fmt.Errorf("parse xml: %w", io.ErrUnexpectedEOF)
	}
	return doc, nil
}

// prefixFor recovers the prefix bound to the element namespace by the
// nearest namespace declaration, since encoding/xml resolves names.
func prefixFor(stack []*Node, t xml.StartElement) string {
	if t.Name.Space == "" {
		return ""
	}
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" && a.Value == t.Name.Space {
			return a.Name.Local
		}
		if a.Name.Space == "" && a.Name.Local == "xmlns" && a.Value == t.Name.Space {
			return ""
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		for _, a := range stack[i].attrs {
			if a.Namespace != NamespaceXMLNS || a.Value != t.Name.Space {
				continue
			}
			if a.Prefix == "xmlns" {
				return a.Local
			}
			return ""
		}
	}
	return ""
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func convertAttrs(xmlAttrs []xml.Attr) []Attr {
	attrs := make([]Attr, 0, len(xmlAttrs))
	for _, a := range xmlAttrs {
		namespace := a.Name.Space
		prefix := ""
		switch {
		case namespace == "xmlns":
			namespace = XMLNSNamespace
			prefix = "xmlns"
		case namespace == "" && a.Name.Local == "xmlns":
			namespace = XMLNSNamespace
		case namespace == XMLNamespace:
			prefix = "xml"
		}
		attrs = append(attrs, Attr{
			Namespace: RegisterNamespace(namespace),
			Prefix:    prefix,
			Local:     a.Name.Local,
			Value:     a.Value,
		})
	}
	return attrs
}
