package derive

import (
	"fmt"
	"go/types"
	"strconv"
)

type generator struct {
	pkg    *Package
	output string

	order   []*Derived
	byName  map[string]*Derived
	imports map[string]string // path -> local name
	names   map[string]string // local name -> path
	marker  string            // local name of the marker package

	pkgNames map[string]string // path -> declared package name
}

func newGenerator(pkg *Package, output string) *generator {
	g := &generator{
		pkg:     pkg,
		output:  output,
		byName:  make(map[string]*Derived),
		imports: make(map[string]string),
		names:   make(map[string]string),

		pkgNames: make(map[string]string),
	}
	g.marker = g.localName("marker")
	g.names[g.marker] = MarkerPath
	return g
}

// entry returns the report entry for name, creating it on first use.
func (g *generator) entry(name, kind, sum string) *Derived {
	if e, ok := g.byName[name]; ok {
		if sum != "" && e.Sum == "" {
			e.Sum = sum
		}
		return e
	}
	e := &Derived{Type: name, Kind: kind, Sum: sum}
	g.byName[name] = e
	g.order = append(g.order, e)
	return e
}

// qualifier spells package names in generated code, recording the imports
// the derive file needs.
func (g *generator) qualifier(p *types.Package) string {
	if p == g.pkg.Types {
		return ""
	}
	if p.Path() == MarkerPath {
		return g.marker
	}
	if name, ok := g.imports[p.Path()]; ok {
		return name
	}
	name := g.localName(p.Name())
	g.imports[p.Path()] = name
	g.names[name] = p.Path()
	g.pkgNames[p.Path()] = p.Name()
	return name
}

// localName picks an import name that clashes with neither another import
// nor a package-level identifier.
func (g *generator) localName(base string) string {
	name := base
	for i := 2; ; i++ {
		_, taken := g.names[name]
		if !taken && g.pkg.Types.Scope().Lookup(name) == nil {
			return name
		}
		name = base + strconv.Itoa(i)
	}
}

func (g *generator) typeString(t types.Type) string {
	return types.TypeString(t, g.qualifier)
}

func (g *generator) check(field string, t types.Type, assert string) Check {
	return Check{Field: field, Type: g.typeString(t), Assert: assert}
}

func (g *generator) classifyFields(st *types.Struct, prefix string, p Predicate) ([]Check, error) {
	var checks []Check
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		label := f.Name()
		if prefix != "" {
			label = prefix + "." + label
		}
		cs, err := g.classify(f.Type(), label, p)
		if err != nil {
			return nil, err
		}
		checks = append(checks, cs...)
	}
	return checks, nil
}

// classify returns the assertions proving that a member of type t satisfies p.
// Types outside every rule get the plain predicate assertion, which does not
// compile; that is how a non-conforming member is reported.
func (g *generator) classify(t types.Type, label string, p Predicate) ([]Check, error) {
	t = types.Unalias(t)

	if _, ok := t.(*types.TypeParam); ok {
		return nil, fmt.Errorf("field %s: %w", label, ErrGeneric)
	}

	if b, ok := t.Underlying().(*types.Basic); ok && b.Kind() != types.UnsafePointer {
		return []Check{g.check(label, t, "AssertScalar")}, nil
	}
	if isSyncPrimitive(t) {
		return []Check{g.check(label, t, "AssertSync")}, nil
	}
	if elem, ok := atomicPointerElem(t); ok {
		return g.reference(elem, label)
	}

	if named, ok := t.(*types.Named); ok {
		if err := g.checkReceiver(named, label, p); err != nil {
			return nil, err
		}
		return []Check{g.check(label, t, p.assert())}, nil
	}

	switch u := t.(type) {
	case *types.Pointer:
		return g.reference(u.Elem(), label)
	case *types.Slice:
		return g.reference(u.Elem(), label)
	case *types.Array:
		return g.classify(u.Elem(), label, p)
	case *types.Chan:
		return g.classify(u.Elem(), label, p)
	case *types.Struct:
		return g.classifyFields(u, label, p)
	}

	// maps, funcs, unsafe.Pointer and interfaces without the marker method
	return []Check{g.check(label, t, p.assert())}, nil
}

// reference classifies a value reached through a pointer-like member. The
// handler and the interrupted code may both hold the reference, so the target
// has to be shareable.
func (g *generator) reference(elem types.Type, label string) ([]Check, error) {
	elem = types.Unalias(elem)

	if _, ok := elem.(*types.TypeParam); ok {
		return nil, fmt.Errorf("field %s: %w", label, ErrGeneric)
	}
	if b, ok := elem.Underlying().(*types.Basic); ok && b.Kind() != types.UnsafePointer {
		return []Check{g.check(label, elem, "AssertScalar")}, nil
	}
	if isSyncPrimitive(elem) {
		return []Check{g.check(label, elem, "AssertSync")}, nil
	}
	if st, ok := elem.(*types.Struct); ok {
		return g.classifyFields(st, label, Shareable)
	}
	return []Check{g.check(label, types.NewPointer(elem), Shareable.assert())}, nil
}

// checkReceiver rejects named member types that declare the marker method on a
// pointer receiver only: a value member would never satisfy the assertion.
func (g *generator) checkReceiver(named *types.Named, label string, p Predicate) error {
	if types.NewMethodSet(named).Lookup(nil, p.Method()) != nil {
		return nil
	}
	if sel := types.NewMethodSet(types.NewPointer(named)).Lookup(nil, p.Method()); sel != nil && !g.generated(sel.Obj().Pos()) {
		return fmt.Errorf("field %s: %s declares %s on a pointer receiver; held by value it needs a value receiver",
			label, g.typeString(named), p.Method())
	}
	return nil
}

var syncPrimitives = map[string]map[string]bool{
	"sync": {
		"Mutex": true, "RWMutex": true, "Once": true, "WaitGroup": true, "Map": true,
	},
	"sync/atomic": {
		"Bool": true, "Int32": true, "Int64": true,
		"Uint32": true, "Uint64": true, "Uintptr": true, "Value": true,
	},
}

// isSyncPrimitive mirrors marker.SyncPrimitive.
func isSyncPrimitive(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return syncPrimitives[named.Obj().Pkg().Path()][named.Obj().Name()]
}

func atomicPointerElem(t types.Type) (types.Type, bool) {
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil, false
	}
	if named.Obj().Pkg().Path() != "sync/atomic" || named.Obj().Name() != "Pointer" {
		return nil, false
	}
	if named.TypeArgs().Len() != 1 {
		return nil, false
	}
	return named.TypeArgs().At(0), true
}
