package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/jacoelho/contentlist"
	xerrors "github.com/jacoelho/contentlist/errors"
	"github.com/jacoelho/contentlist/pkg/dom"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("livequery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scriptPath := fs.String("script", "", "path to YAML query script")
	htmlMode := fs.Bool("html", false, "parse the document as HTML")
	verbose := fs.Bool("verbose", false, "log list activity to stderr")
	cpuProfilePath := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfilePath := fs.String("memprofile", "", "write memory profile to file")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s --script <script.yaml> <document>\n\n", os.Args[0]),
			writeln(stderr, "Runs live list queries and mutations against a document."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *scriptPath == "" {
		if err := writeln(stderr, "error: --script is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		if err := writeln(stderr, "error: exactly one document argument is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}
	docPath := remaining[0]

	prof := profiler{cpuPath: *cpuProfilePath, memPath: *memProfilePath}
	if err := prof.start(); err != nil {
		return report(stderr, err)
	}
	defer func() {
		if err := prof.stop(); err != nil {
			_ = writef(stderr, "error: %v\n", err)
		}
	}()

	data, err := os.ReadFile(*scriptPath)
	if err != nil {
		if writeErr := writef(stderr, "error reading script: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	s, err := parseScript(data)
	if err != nil {
		return report(stderr, err)
	}

	doc, err := loadDocument(docPath, *htmlMode)
	if err != nil {
		return report(stderr, err)
	}

	opts := contentlist.NewOptions()
	if *verbose {
		opts = opts.WithLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	engine, err := contentlist.NewEngine(opts)
	if err != nil {
		return report(stderr, err)
	}
	defer engine.Shutdown()

	r := newRunner(engine, doc, stdout)
	defer r.close()
	if err := r.run(s); err != nil {
		return report(stderr, err)
	}
	return 0
}

func loadDocument(path string, htmlMode bool) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var doc *dom.Document
	if htmlMode {
		doc, err = dom.ParseHTML(f)
	} else {
		doc, err = dom.ParseXML(f)
	}
	if err != nil {
		return nil, xerrors.NewViolation(xerrors.ErrDocumentParse, err.Error(), path)
	}
	return doc, nil
}

func report(w io.Writer, err error) int {
	if v, ok := xerrors.AsViolation(err); ok {
		_ = writeln(w, v.Error())
		return 1
	}
	_ = writef(w, "error: %v\n", err)
	return 1
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

// profiler brackets a script run with optional CPU and heap profiles.
type profiler struct {
	cpuPath string
	memPath string
	cpu     *os.File
}

func (p *profiler) start() error {
	if p.cpuPath == "" {
		return nil
	}
	f, err := os.Create(p.cpuPath)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Join(fmt.Errorf("cpu profile %s: %w", p.cpuPath, err), f.Close())
	}
	p.cpu = f
	return nil
}

// stop ends the CPU profile and writes the heap profile. Both are attempted
// even when one fails.
func (p *profiler) stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cpu profile %s: %w", p.cpuPath, err))
		}
		p.cpu = nil
	}
	if p.memPath != "" {
		if err := writeHeapProfile(p.memPath); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Join(fmt.Errorf("heap profile %s: %w", path, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("heap profile %s: %w", path, err)
	}
	return nil
}
