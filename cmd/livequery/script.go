package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jacoelho/contentlist"
	xerrors "github.com/jacoelho/contentlist/errors"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// script is a sequence of steps run against one document.
type script struct {
	Steps []step `yaml:"steps"`
}

// step is one script operation. Elements are referenced by id; an empty
// root or parent means the document node.
type step struct {
	Op        string `yaml:"op"`
	List      string `yaml:"list"`
	Root      string `yaml:"root"`
	Tag       string `yaml:"tag"`
	Namespace string `yaml:"namespace"`
	Class     string `yaml:"class"`
	Name      string `yaml:"name"`
	Value     string `yaml:"value"`
	Target    string `yaml:"target"`
	Parent    string `yaml:"parent"`
	Before    string `yaml:"before"`
	ID        string `yaml:"id"`
	Index     int    `yaml:"index"`
	Children  bool   `yaml:"children"`
	Static    bool   `yaml:"static"`
}

func parseScript(data []byte) (*script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, xerrors.NewViolation(xerrors.ErrScriptParse, err.Error(), "script")
	}
	for i, st := range s.Steps {
		if st.Op == "" {
			return nil, stepError(i, "missing op")
		}
	}
	return &s, nil
}

func stepError(index int, format string, args ...any) error {
	v := xerrors.NewViolationf(xerrors.ErrScriptStep, "script", format, args...)
	v.Step = index + 1
	return v
}

// runner executes a script and prints one line per observing step.
type runner struct {
	engine *contentlist.Engine
	doc    *dom.Document
	out    io.Writer
	lists  map[string]*contentlist.List
}

func newRunner(engine *contentlist.Engine, doc *dom.Document, out io.Writer) *runner {
	return &runner{engine: engine, doc: doc, out: out, lists: make(map[string]*contentlist.List)}
}

func (r *runner) run(s *script) error {
	for i, st := range s.Steps {
		if err := r.step(i, st); err != nil {
			return err
		}
	}
	return nil
}

// close releases every list the script left open.
func (r *runner) close() {
	for name, l := range r.lists {
		l.Release()
		delete(r.lists, name)
	}
}

func (r *runner) step(i int, st step) error {
	switch st.Op {
	case "query":
		return r.query(i, st)
	case "length":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		return writef(r.out, "%s length %d\n", st.List, l.Length())
	case "item":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		return writef(r.out, "%s item %d %s\n", st.List, st.Index, describe(l.Item(st.Index)))
	case "named":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		return writef(r.out, "%s named %s %s\n", st.List, st.Name, describe(l.NamedItem(st.Name)))
	case "names":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		return writef(r.out, "%s names %v\n", st.List, l.SupportedNames())
	case "all":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		var items []string
		for _, el := range l.All() {
			items = append(items, describe(el))
		}
		return writef(r.out, "%s all %v\n", st.List, items)
	case "append", "insert":
		return r.insert(i, st)
	case "remove":
		el, err := r.element(i, st.Target)
		if err != nil {
			return err
		}
		el.Remove()
		return nil
	case "destroy":
		el, err := r.element(i, st.Target)
		if err != nil {
			return err
		}
		el.Destroy()
		return nil
	case "setattr":
		el, err := r.element(i, st.Target)
		if err != nil {
			return err
		}
		el.SetAttribute(st.Name, st.Value)
		return nil
	case "removeattr":
		el, err := r.element(i, st.Target)
		if err != nil {
			return err
		}
		el.RemoveAttribute(st.Name)
		return nil
	case "release":
		l, err := r.list(i, st)
		if err != nil {
			return err
		}
		l.Release()
		delete(r.lists, st.List)
		return nil
	default:
		return stepError(i, "unknown op %q", st.Op)
	}
}

func (r *runner) query(i int, st step) error {
	if st.List == "" {
		return stepError(i, "query needs a list name")
	}
	if _, ok := r.lists[st.List]; ok {
		return stepError(i, "list %q already defined", st.List)
	}
	root, err := r.node(i, st.Root)
	if err != nil {
		return err
	}
	var l *contentlist.List
	switch {
	case st.Children:
		l = r.engine.Children(root)
	case st.Class != "":
		l = r.engine.GetElementsByClassName(root, st.Class)
	case st.Name != "":
		l = r.engine.GetElementsByName(root, st.Name)
	case st.Tag != "" && st.Static:
		l = r.engine.StaticTagList(root, st.Tag)
	case st.Tag != "" && st.Namespace != "":
		l = r.engine.GetElementsByTagNameNS(root, st.Namespace, st.Tag)
	case st.Tag != "":
		l = r.engine.GetElementsByTagName(root, st.Tag)
	default:
		return stepError(i, "query needs tag, class, name or children")
	}
	r.lists[st.List] = l
	return nil
}

func (r *runner) insert(i int, st step) error {
	if st.Tag == "" {
		return stepError(i, "%s needs a tag", st.Op)
	}
	parent, err := r.node(i, st.Parent)
	if err != nil {
		return err
	}
	var el *dom.Node
	if st.Namespace != "" {
		el = r.doc.CreateElementNS(st.Namespace, st.Tag)
	} else {
		el = r.doc.CreateElement(st.Tag)
	}
	if st.ID != "" {
		el.SetAttribute("id", st.ID)
	}
	if st.Class != "" {
		el.SetAttribute("class", st.Class)
	}
	if st.Name != "" {
		el.SetAttribute("name", st.Name)
	}
	var ref *dom.Node
	if st.Op == "insert" && st.Before != "" {
		if ref, err = r.element(i, st.Before); err != nil {
			return err
		}
	}
	if err := parent.InsertBefore(el, ref); err != nil {
		return stepError(i, "%s: %v", st.Op, err)
	}
	return nil
}

func (r *runner) list(i int, st step) (*contentlist.List, error) {
	l, ok := r.lists[st.List]
	if !ok {
		return nil, stepError(i, "unknown list %q", st.List)
	}
	return l, nil
}

func (r *runner) node(i int, id string) (*dom.Node, error) {
	if id == "" {
		return r.doc.Node(), nil
	}
	return r.element(i, id)
}

func (r *runner) element(i int, id string) (*dom.Node, error) {
	root := r.doc.Node()
	for cur := root; cur != nil; cur = cur.NextNode(root) {
		if cur.IsElement() && cur.ID() == id {
			return cur, nil
		}
	}
	return nil, stepError(i, "no element with id %q", id)
}

func describe(el *dom.Node) string {
	if el == nil {
		return "<none>"
	}
	if id := el.ID(); id != "" {
		return fmt.Sprintf("%s#%s", el.LocalName(), id)
	}
	return el.LocalName()
}
