package contentlist_test

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jacoelho/contentlist"
	xerrors "github.com/jacoelho/contentlist/errors"
	"github.com/jacoelho/contentlist/pkg/dom"
)

func newEngine(t *testing.T, opts contentlist.Options) *contentlist.Engine {
	t.Helper()
	e, err := contentlist.NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(e.Shutdown)
	return e
}

func parseXML(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseXML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseXML() error = %v", err)
	}
	return doc
}

func elementByID(root *dom.Node, id string) *dom.Node {
	for cur := root; cur != nil; cur = cur.NextNode(root) {
		if cur.ID() == id {
			return cur
		}
	}
	return nil
}

func listIDs(l *contentlist.List) []string {
	var out []string
	for _, el := range l.All() {
		out = append(out, el.ID())
	}
	return out
}

func TestEquivalentQueriesShareOneList(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><div/><span/></r>`)
	root := doc.DocumentElement()

	a := e.GetElementsByTagName(root, "div")
	b := e.GetElementsByTagName(root, "div")
	if a != b {
		t.Fatalf("GetElementsByTagName() returned distinct lists for the same query")
	}
	if a.Refs() != 2 {
		t.Fatalf("Refs() = %d, want 2", a.Refs())
	}

	others := []*contentlist.List{
		e.GetElementsByTagName(root, "span"),
		e.GetElementsByTagName(doc.Node(), "div"),
		e.GetElementsByTagNameNS(root, "*", "div"),
		e.GetElementsByClassName(root, "div"),
	}
	for i, other := range others {
		if other == a {
			t.Fatalf("query %d shares the div list", i)
		}
		other.Release()
	}
	a.Release()
	b.Release()
}

func TestFuncKindsAreKeyedByIdentity(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><a id="1"/><b id="2"/></r>`)
	root := doc.DocumentElement()

	always := func(*dom.Node, dom.NamespaceID, string, any) bool { return true }
	first := &contentlist.FuncKind{Name: "first", Match: always}
	second := &contentlist.FuncKind{Name: "second", Match: always}

	a := e.GetFuncList(root, first, "x")
	b := e.GetFuncList(root, second, "x")
	c := e.GetFuncList(root, first, "x")
	defer a.Release()
	defer b.Release()
	defer c.Release()

	if a == b {
		t.Fatalf("distinct kinds share a list")
	}
	if a != c {
		t.Fatalf("same kind and argument returned distinct lists")
	}
	if got := a.Length(); got != 2 {
		t.Fatalf("Length() = %d, want 2", got)
	}
}

func TestListLivesUntilLastRelease(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><div id="a"/></r>`)
	root := doc.DocumentElement()

	first := e.GetElementsByTagName(root, "div")
	second := e.GetElementsByTagName(root, "div")
	first.Release()

	if !second.Shared() {
		t.Fatalf("list left the cache while still referenced")
	}
	if again := e.GetElementsByTagName(root, "div"); again != second {
		t.Fatalf("query after partial release returned a new list")
	} else {
		again.Release()
	}

	second.Release()
	if second.Shared() {
		t.Fatalf("list still cached after last release")
	}
	if e.CachedLists() != 0 {
		t.Fatalf("CachedLists() = %d, want 0", e.CachedLists())
	}

	fresh := e.GetElementsByTagName(root, "div")
	defer fresh.Release()
	if fresh == second {
		t.Fatalf("query after destruction reused the destroyed list")
	}
	if got := listIDs(fresh); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("fresh list = %v, want [a]", got)
	}
}

func TestReleaseUnderflowPanics(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r/>`)
	l := e.GetElementsByTagName(doc.DocumentElement(), "x")
	l.Release()

	defer func() {
		v, ok := xerrors.AsViolation(recover())
		if !ok || v.Code != string(xerrors.ErrRefcountUnderflow) {
			t.Fatalf("recover() = %v, want refcount underflow violation", v)
		}
	}()
	l.Release()
}

func TestRootDestroyedDropsCacheEntry(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><s><div/></s></r>`)
	sub := doc.DocumentElement().FirstChild()

	l := e.GetElementsByTagName(sub, "div")
	defer l.Release()
	if l.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", l.Length())
	}

	sub.Destroy()
	if l.Shared() {
		t.Fatalf("list still cached after its root was destroyed")
	}
	if l.Root() != nil {
		t.Fatalf("Root() kept the destroyed node")
	}
	if l.Length() != 0 {
		t.Fatalf("Length() = %d after root destruction, want 0", l.Length())
	}
	if e.CachedLists() != 0 {
		t.Fatalf("CachedLists() = %d, want 0", e.CachedLists())
	}
	if again := e.GetElementsByTagName(sub, "div"); again != nil {
		t.Fatalf("query on destroyed root = %v, want nil", again)
	}
}

func TestNilRootYieldsEmptyList(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	l := e.GetElementsByTagName(nil, "div")
	if l != nil {
		t.Fatalf("GetElementsByTagName(nil) = %v, want nil", l)
	}
	if l.Length() != 0 || l.Item(0) != nil || l.NamedItem("x") != nil || l.SupportedNames() != nil {
		t.Fatalf("nil list is not empty")
	}
	l.Release()
}

func TestAppendKeepsListUpToDate(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><div id="a"/><span id="b"/><div id="c"/></r>`)
	root := doc.DocumentElement()

	l := e.GetElementsByTagName(root, "div")
	defer l.Release()
	if got := listIDs(l); !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("list = %v, want [a c]", got)
	}
	visited := l.Stats().NodesVisited

	d := doc.CreateElement("div")
	d.SetAttribute("id", "d")
	if err := root.AppendChild(d); err != nil {
		t.Fatalf("AppendChild() error = %v", err)
	}

	if got := l.Length(); got != 3 {
		t.Fatalf("Length() = %d, want 3", got)
	}
	if l.Item(2) != d {
		t.Fatalf("Item(2) is not the appended element")
	}
	if l.Stats().NodesVisited != visited {
		t.Fatalf("append rescanned the tree")
	}
	if l.Stats().FastAppends != 1 {
		t.Fatalf("FastAppends = %d, want 1", l.Stats().FastAppends)
	}
}

func TestNamedItemFollowsAttributes(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><p id="x" n="1"/><p id="x" n="2"/></r>`)
	root := doc.DocumentElement()

	l := e.GetElementsByTagName(root, "p")
	defer l.Release()

	first := l.NamedItem("x")
	if first.GetAttribute("n") != "1" {
		t.Fatalf("NamedItem(x) = element %q, want the first", first.GetAttribute("n"))
	}
	first.RemoveAttribute("id")
	if got := l.NamedItem("x"); got == nil || got.GetAttribute("n") != "2" {
		t.Fatalf("NamedItem(x) after removing id did not move to the second element")
	}
	if got := l.SupportedNames(); !slices.Equal(got, []string{"x"}) {
		t.Fatalf("SupportedNames() = %v, want [x]", got)
	}
}

func TestHTMLQueries(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc, err := dom.ParseHTML(strings.NewReader(
		`<body><DIV class="a b" id="one"></DIV><input name="q" id="two"><div class="b"></div></body>`))
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	body := doc.Node()

	divs := e.GetElementsByTagName(body, "DIV")
	defer divs.Release()
	if divs.Length() != 2 {
		t.Fatalf("GetElementsByTagName(DIV).Length() = %d, want 2", divs.Length())
	}

	classes := e.GetElementsByClassName(body, "b a")
	defer classes.Release()
	if got := listIDs(classes); !slices.Equal(got, []string{"one"}) {
		t.Fatalf("GetElementsByClassName = %v, want [one]", got)
	}

	named := e.GetElementsByName(body, "q")
	defer named.Release()
	if got := listIDs(named); !slices.Equal(got, []string{"two"}) {
		t.Fatalf("GetElementsByName = %v, want [two]", got)
	}
	if named.NamedItem("q") == nil {
		t.Fatalf("NamedItem(q) = nil, want the input")
	}

	elementByID(body, "two").SetAttribute("name", "other")
	if named.Length() != 0 {
		t.Fatalf("GetElementsByName length after rename = %d, want 0", named.Length())
	}
}

func TestTagNameNSComparesLiteralName(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc, err := dom.ParseHTML(strings.NewReader(`<body><div></div><div></div></body>`))
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	upper := e.GetElementsByTagNameNS(doc.Node(), dom.XHTMLNamespace, "DIV")
	defer upper.Release()
	if got := upper.Length(); got != 0 {
		t.Fatalf("GetElementsByTagNameNS(xhtml, DIV).Length() = %d, want 0", got)
	}

	lower := e.GetElementsByTagNameNS(doc.Node(), dom.XHTMLNamespace, "div")
	defer lower.Release()
	if got := lower.Length(); got != 2 {
		t.Fatalf("GetElementsByTagNameNS(xhtml, div).Length() = %d, want 2", got)
	}

	wildcard := e.GetElementsByTagNameNS(doc.Node(), "*", "DIV")
	defer wildcard.Release()
	if got := wildcard.Length(); got != 2 {
		t.Fatalf("GetElementsByTagNameNS(*, DIV).Length() = %d, want 2", got)
	}
}

func TestChildrenAndStaticLists(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r><a id="1"><a id="2"/></a>text<b id="3"/></r>`)
	root := doc.DocumentElement()

	children := e.Children(root)
	defer children.Release()
	if got := listIDs(children); !slices.Equal(got, []string{"1", "3"}) {
		t.Fatalf("Children() = %v, want [1 3]", got)
	}
	if children.Shared() {
		t.Fatalf("Children() list is cached")
	}

	static := e.StaticTagList(root, "a")
	defer static.Release()
	if static.Length() != 2 {
		t.Fatalf("StaticTagList().Length() = %d, want 2", static.Length())
	}
	if static.Live() {
		t.Fatalf("StaticTagList() is live")
	}

	extra := doc.CreateElement("a")
	if err := root.AppendChild(extra); err != nil {
		t.Fatalf("AppendChild() error = %v", err)
	}
	if static.Length() != 2 {
		t.Fatalf("static list followed a mutation")
	}
	if children.Length() != 3 {
		t.Fatalf("Children().Length() = %d, want 3", children.Length())
	}
}

func TestShutdownUnsharesLists(t *testing.T) {
	e, err := contentlist.NewEngine(contentlist.NewOptions())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	doc := parseXML(t, `<r><x/></r>`)
	root := doc.DocumentElement()

	before := e.GetElementsByTagName(root, "x")
	e.Shutdown()
	if before.Shared() {
		t.Fatalf("list still shared after Shutdown")
	}
	if before.Length() != 1 {
		t.Fatalf("Length() after Shutdown = %d, want 1", before.Length())
	}

	a := e.GetElementsByTagName(root, "x")
	b := e.GetElementsByTagName(root, "x")
	if a == b {
		t.Fatalf("shut down engine shared a list")
	}
	for _, l := range []*contentlist.List{before, a, b} {
		l.Release()
	}
	e.Shutdown()
}

func TestDefaultEngine(t *testing.T) {
	e := contentlist.Default()
	if contentlist.Default() != e {
		t.Fatalf("Default() is not stable")
	}
	contentlist.ShutdownDefault()
	if contentlist.Default() == e {
		t.Fatalf("Default() after ShutdownDefault returned the old engine")
	}
	contentlist.ShutdownDefault()
}

func TestFlushOnRead(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions())
	doc := parseXML(t, `<r/>`)
	root := doc.DocumentElement()
	l := e.GetElementsByTagName(root, "x")
	defer l.Release()

	doc.Defer(func() {
		if err := root.AppendChild(doc.CreateElement("x")); err != nil {
			t.Errorf("AppendChild() error = %v", err)
		}
	})
	if got := l.LengthNoFlush(); got != 0 {
		t.Fatalf("LengthNoFlush() = %d, want 0", got)
	}
	if got := l.Length(); got != 1 {
		t.Fatalf("Length() = %d, want 1", got)
	}
	if doc.PendingChanges() != 0 {
		t.Fatalf("PendingChanges() = %d after flush", doc.PendingChanges())
	}
}

func TestFlushOnReadDisabled(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions().WithFlushOnRead(false))
	doc := parseXML(t, `<r/>`)
	root := doc.DocumentElement()
	l := e.GetElementsByTagName(root, "x")
	defer l.Release()

	doc.Defer(func() {})
	l.Length()
	if doc.PendingChanges() != 1 {
		t.Fatalf("read flushed with flushing disabled")
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := contentlist.NewOptions().Validate(); err != nil {
		t.Fatalf("default Validate() error = %v", err)
	}
	if err := contentlist.NewOptions().WithRecentSlots(0).Validate(); err != nil {
		t.Fatalf("zero slots Validate() error = %v", err)
	}
	err := contentlist.NewOptions().WithRecentSlots(-1).Validate()
	if !xerrors.Is(err, xerrors.ErrInvalidOptions) {
		t.Fatalf("Validate() error = %v, want invalid-options", err)
	}
	if _, err := contentlist.NewEngine(contentlist.NewOptions().WithRecentSlots(-1)); err == nil {
		t.Fatalf("NewEngine() accepted negative slots")
	}
}

func TestRecentSlotsDisabledStillShares(t *testing.T) {
	e := newEngine(t, contentlist.NewOptions().WithRecentSlots(0))
	doc := parseXML(t, `<r/>`)
	a := e.GetElementsByTagName(doc.DocumentElement(), "x")
	b := e.GetElementsByTagName(doc.DocumentElement(), "x")
	defer a.Release()
	defer b.Release()
	if a != b {
		t.Fatalf("table tier did not share the list")
	}
}

func TestEngineTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := newEngine(t, contentlist.NewOptions().
		WithRegisterer(reg).
		WithTracerProvider(tp).
		WithLogger(logger))

	doc := parseXML(t, `<r><x/></r>`)
	root := doc.DocumentElement()
	a := e.GetElementsByTagName(root, "x")
	b := e.GetElementsByTagName(root, "x")
	a.Length()

	n, err := testutil.GatherAndCount(reg, "contentlist_cache_lookups_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("lookup series = %d, want 2 (miss and recent)", n)
	}
	if len(recorder.Ended()) != 1 {
		t.Fatalf("rebuild spans = %d, want 1", len(recorder.Ended()))
	}
	if !strings.Contains(logs.String(), "content list created") {
		t.Fatalf("missing creation log in %q", logs.String())
	}

	a.Release()
	b.Release()
	if !strings.Contains(logs.String(), "content list destroyed") {
		t.Fatalf("missing destruction log in %q", logs.String())
	}
}
