// Package module resolves `use` paths against a filesystem convention,
// builds the module dependency DAG, and topologically sorts it.
//
// Grounded on the teacher's internal/module/loader.go (Loader, cache,
// searchPaths, loadStack-based cycle tracking) and internal/link/topo.go
// (DFS topological sort with cycle-path reconstruction).
package module

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/parser"
	"github.com/tridentlang/trident/internal/target"
)

// Module is one resolved, parsed compilation unit.
type Module struct {
	Identity string // canonical dotted path, e.g. "std.crypto.hash"
	FilePath string
	File     *ast.File
	Uses     []string // canonical identities of direct dependencies
}

// Loader loads and caches Modules, resolving `use` paths against a
// root source directory plus the compiler's blessed std/ext modules.
type Loader struct {
	root       string
	stdRoot    string // directory containing std.* sources
	extRoot    string // directory containing <os>.ext.* sources, if any
	activeOS   string
	cfg        *target.Config

	mu        sync.Mutex
	cache     map[string]*Module
	loadStack []string // for cycle detection during recursive loads
}

// NewLoader creates a Loader rooted at root, with std/ext directories
// and the active target config (used to gate `<os>.ext.*` imports,
// spec.md §4.3: "Importing `<os>.ext.*` when the active target's OS
// differs is a hard error").
func NewLoader(root, stdRoot, extRoot string, cfg *target.Config) *Loader {
	return &Loader{
		root: root, stdRoot: stdRoot, extRoot: extRoot,
		activeOS: cfg.OS, cfg: cfg,
		cache: map[string]*Module{},
	}
}

// LoadEntry loads the entry file and, recursively, every module it
// (transitively) uses, returning the loaded-module map keyed by
// canonical identity.
func (l *Loader) LoadEntry(entryPath string) (map[string]*Module, errors.List) {
	src, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, errors.List{errors.New(errors.MOD001, errors.PhaseModule,
			"cannot read entry file "+entryPath+": "+err.Error(), errors.ZeroSpan())}
	}
	identity := identityFromPath(entryPath)
	mod, errs := l.parseAndRegister(identity, entryPath, string(src))
	if errs.HasErrors() {
		return nil, errs
	}

	var allErrs errors.List
	allErrs = append(allErrs, errs...)
	if err := l.loadDeps(mod, &allErrs); err != nil {
		return nil, allErrs
	}
	if allErrs.HasErrors() {
		return nil, allErrs
	}
	return l.cache, allErrs
}

func (l *Loader) loadDeps(mod *Module, allErrs *errors.List) error {
	l.loadStack = append(l.loadStack, mod.Identity)
	defer func() { l.loadStack = l.loadStack[:len(l.loadStack)-1] }()

	for _, use := range mod.File.Uses {
		identity := strings.Join(use.Path, ".")
		if identity == mod.Identity {
			*allErrs = append(*allErrs, errors.New(errors.MOD003, errors.PhaseModule,
				"module "+identity+" imports itself", use.Span()))
			continue
		}
		if l.onStack(identity) {
			cyclePath := append(append([]string{}, l.loadStack...), identity)
			*allErrs = append(*allErrs, errors.New(errors.MOD002, errors.PhaseModule,
				"import cycle detected: "+strings.Join(cyclePath, " -> "), use.Span()))
			continue
		}

		mod.Uses = append(mod.Uses, identity)

		l.mu.Lock()
		_, cached := l.cache[identity]
		l.mu.Unlock()
		if cached {
			continue
		}

		path, isExt, err := l.resolvePath(identity)
		if err != nil {
			*allErrs = append(*allErrs, err.(*errors.Report))
			continue
		}
		if isExt && l.activeOS == "" {
			*allErrs = append(*allErrs, errors.New(errors.TGT004, errors.PhaseModule,
				"module "+identity+" is an OS extension module but no OS target is active", use.Span()))
			continue
		}

		src, readErr := os.ReadFile(path)
		if readErr != nil {
			*allErrs = append(*allErrs, errors.New(errors.MOD001, errors.PhaseModule,
				"module "+identity+" not found: "+readErr.Error(), use.Span()))
			continue
		}

		dep, depErrs := l.parseAndRegister(identity, path, string(src))
		*allErrs = append(*allErrs, depErrs...)
		if depErrs.HasErrors() {
			continue
		}
		if err := l.loadDeps(dep, allErrs); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) onStack(identity string) bool {
	for _, id := range l.loadStack {
		if id == identity {
			return true
		}
	}
	return false
}

func (l *Loader) parseAndRegister(identity, path, src string) (*Module, errors.List) {
	p := parser.New(src, path)
	file, errs := p.ParseFile()
	if errs.HasErrors() {
		return nil, errs
	}
	mod := &Module{Identity: identity, FilePath: path, File: file}
	l.mu.Lock()
	l.cache[identity] = mod
	l.mu.Unlock()
	return mod, errs
}

// resolvePath turns a canonical dotted identity into a file path,
// checking std.* first, then <os>.ext.*, then the local source root.
func (l *Loader) resolvePath(identity string) (path string, isExt bool, err error) {
	parts := strings.Split(identity, ".")
	rel := filepath.Join(parts...) + ".tri"

	if strings.HasPrefix(identity, "std.") {
		p := filepath.Join(l.stdRoot, rel[len("std")+1:])
		if _, statErr := os.Stat(p); statErr == nil {
			return p, false, nil
		}
	}
	if strings.HasPrefix(identity, l.activeOS+".ext.") {
		p := filepath.Join(l.extRoot, rel[len(l.activeOS)+len(".ext")+1:])
		if _, statErr := os.Stat(p); statErr == nil {
			return p, true, nil
		}
	} else if strings.Contains(identity, ".ext.") {
		// a *different* OS's ext module: always a hard error regardless
		// of whether the file happens to exist on disk.
		return "", true, errors.New(errors.TGT004, errors.PhaseModule,
			"module "+identity+" belongs to a different target OS", errors.ZeroSpan())
	}

	p := filepath.Join(l.root, rel)
	if _, statErr := os.Stat(p); statErr == nil {
		return p, false, nil
	}
	return "", false, errors.New(errors.MOD001, errors.PhaseModule,
		"module "+identity+" not found under "+l.root, errors.ZeroSpan())
}

func identityFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".tri")
	return base
}

// TopoSort orders mods so every module appears after all modules it
// uses, ties broken by dependency-declaration order then by identity
// (spec.md §5: "Module processing order is the unique topological
// order of the DAG"). LoadEntry has already rejected cycles, so this
// assumes mods is acyclic.
func TopoSort(mods map[string]*Module, entry string) []*Module {
	visited := map[string]bool{}
	var order []*Module
	var visit func(string)
	visit = func(identity string) {
		if visited[identity] {
			return
		}
		visited[identity] = true
		mod, ok := mods[identity]
		if !ok {
			return
		}
		for _, dep := range mod.Uses {
			visit(dep)
		}
		order = append(order, mod)
	}
	visit(entry)
	// Any module reachable only incidentally (shouldn't happen given
	// LoadEntry's traversal, but keeps the sort total over mods).
	var rest []string
	for id := range mods {
		if !visited[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		visit(id)
	}
	return order
}
