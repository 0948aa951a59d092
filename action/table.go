// Package action provides the explicit registration table manifest
// records resolve against. References take the form "module.function".
// The table is populated at startup from real Go function values, so
// there is no dynamic symbol lookup anywhere: a reference either resolves
// against the table or the record reports as unresolved.
package action

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Func is an invocable tool action. Implementations run on the caller's
// goroutine; long-running work belongs on the host task queue, not inside
// the menu activation path.
type Func func(ctx context.Context) error

// Ref joins a module and function name into a table reference. Either
// part empty yields the empty, invalid reference.
func Ref(module, function string) string {
	module = strings.TrimSpace(module)
	function = strings.TrimSpace(function)
	if module == "" || function == "" {
		return ""
	}
	return module + "." + function
}

// SplitRef splits a reference on its last dot, mirroring Ref. ok is false
// when ref is not of the form "module.function".
func SplitRef(ref string) (module, function string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

// Table maps action references to functions. It is an explicit object
// built at startup and handed to whoever loads manifests; there is no
// package-global table.
type Table struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{funcs: make(map[string]Func)}
}

// Register binds module.function to fn. Re-registering a reference
// overwrites the previous binding, which lets hosts shadow a built-in
// with their own implementation.
func (t *Table) Register(module, function string, fn Func) error {
	ref := Ref(module, function)
	if ref == "" {
		return fmt.Errorf("action: invalid reference %q + %q", module, function)
	}
	if fn == nil {
		return fmt.Errorf("action: nil function for %s", ref)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.funcs[ref] = fn
	return nil
}

// Resolve returns the function bound to ref and whether it exists.
func (t *Table) Resolve(ref string) (Func, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.funcs[ref]
	return fn, ok
}

// Has reports whether ref is registered.
func (t *Table) Has(ref string) bool {
	_, ok := t.Resolve(ref)
	return ok
}

// Refs returns the registered references sorted alphabetically.
func (t *Table) Refs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	refs := make([]string, 0, len(t.funcs))
	for ref := range t.funcs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Len returns the number of registered references.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.funcs)
}
