// Package contentlist provides live lists of elements matching a query under
// a root node, such as "all elements named div below the body".
//
// Lists are populated lazily, observe the tree they are rooted in and stay
// in sync with it. Equivalent queries share one list through the caches of
// an Engine. Lists are reference counted: every query result owns one
// reference, released with List.Release.
//
// Like the document they observe, engines and lists are not safe for
// concurrent use.
package contentlist

import "sync"

var defaultEngine struct {
	mu     sync.Mutex
	engine *Engine
}

// Default returns the process-wide engine, creating it on first use.
func Default() *Engine {
	defaultEngine.mu.Lock()
	defer defaultEngine.mu.Unlock()
	if defaultEngine.engine == nil {
		e, err := NewEngine(NewOptions())
		if err != nil {
			panic(err)
		}
		defaultEngine.engine = e
	}
	return defaultEngine.engine
}

// ShutdownDefault shuts the process-wide engine down. The next Default call
// creates a fresh one.
func ShutdownDefault() {
	defaultEngine.mu.Lock()
	e := defaultEngine.engine
	defaultEngine.engine = nil
	defaultEngine.mu.Unlock()
	e.Shutdown()
}
