package contentlist_test

import (
	"fmt"
	"strings"

	"github.com/jacoelho/contentlist"
	"github.com/jacoelho/contentlist/pkg/dom"
)

func ExampleEngine_GetElementsByTagName() {
	doc, err := dom.ParseXML(strings.NewReader(`<r><div id="a"/><span id="b"/><div id="c"/></r>`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	root := doc.DocumentElement()

	engine := contentlist.Default()
	divs := engine.GetElementsByTagName(root, "div")
	defer divs.Release()

	fmt.Println(divs.Length(), divs.Item(0).ID(), divs.Item(1).ID())

	d := doc.CreateElement("div")
	d.SetAttribute("id", "d")
	if err := root.AppendChild(d); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(divs.Length(), divs.Item(2).ID())
	// Output:
	// 2 a c
	// 3 d
}

func ExampleList_NamedItem() {
	doc, err := dom.ParseXML(strings.NewReader(`<r><p id="x" n="1"/><p id="x" n="2"/></r>`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	engine, err := contentlist.NewEngine(contentlist.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer engine.Shutdown()

	ps := engine.GetElementsByTagName(doc.DocumentElement(), "p")
	defer ps.Release()

	first := ps.NamedItem("x")
	fmt.Println(first.GetAttribute("n"))
	first.RemoveAttribute("id")
	fmt.Println(ps.NamedItem("x").GetAttribute("n"))
	// Output:
	// 1
	// 2
}

func ExampleEngine_GetElementsByClassName() {
	doc, err := dom.ParseHTML(strings.NewReader(`<p class="note warn">a</p><p class="note">b</p>`))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	engine, err := contentlist.NewEngine(contentlist.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer engine.Shutdown()

	notes := engine.GetElementsByClassName(doc.Node(), "note")
	defer notes.Release()
	for i, el := range notes.All() {
		fmt.Println(i, el.TextContent())
	}
	// Output:
	// 0 a
	// 1 b
}
