// Package derive generates marker implementations for aggregate types.
//
// A type opts in with a directive in its doc comment:
//
//	//irqmask:derive transferable shareable
//
// For a struct (or any named non-interface type) the generator emits one
// static assertion per field, checking that the field's type satisfies the
// requested predicate, followed by the marker method declaring that the type
// itself does. The generated package only compiles when every assertion holds.
//
// An interface carrying the directive is a sealed sum type. Its variants are
// the concrete types of the same package implementing its non-marker methods;
// each variant is derived like a struct unless it declares the marker method
// itself. The interface must embed the matching marker interface, so holding a
// variant behind the interface type is checked by the compiler too.
package derive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/shlex"
)

const (
	// MarkerPath is the import path of the marker package.
	MarkerPath = "irqmask/marker"

	// DefaultOutput is the file name generated code is written to.
	DefaultOutput = "irqmask_derive.go"

	directivePrefix = "//irqmask:derive"
)

var (
	ErrNoDirective = errors.New("derive: no //irqmask:derive directive found")
	ErrGeneric     = errors.New("derive: generic types are not supported")
)

// Predicate is one of the two marker predicates.
type Predicate uint8

const (
	Transferable Predicate = iota + 1
	Shareable
)

// Word is the directive spelling of p.
func (p Predicate) Word() string {
	if p == Shareable {
		return "shareable"
	}
	return "transferable"
}

// Method is the marker method declaring p.
func (p Predicate) Method() string {
	if p == Shareable {
		return "HandlerShareable"
	}
	return "HandlerTransferable"
}

// Interface is the marker interface expressing p.
func (p Predicate) Interface() string {
	if p == Shareable {
		return "Shareable"
	}
	return "Transferable"
}

func (p Predicate) assert() string {
	if p == Shareable {
		return "AssertShareable"
	}
	return "AssertTransferable"
}

func parsePredicate(word string) (Predicate, bool) {
	switch word {
	case "transferable":
		return Transferable, true
	case "shareable":
		return Shareable, true
	}
	return 0, false
}

// Package is a parsed and type-checked Go package.
type Package struct {
	Path  string
	Fset  *token.FileSet
	Files []*ast.File
	Types *types.Package
}

// Check is one generated assertion.
type Check struct {
	Field  string `json:"field,omitempty"`
	Type   string `json:"type"`
	Assert string `json:"assert"`
}

// Impl is the derivation of one predicate for one type.
type Impl struct {
	Predicate string  `json:"predicate"`
	Declared  bool    `json:"declared,omitempty"` // method written by hand, nothing generated
	Checks    []Check `json:"checks,omitempty"`
}

// Derived describes one type the generator handled.
type Derived struct {
	Type     string   `json:"type"`
	Kind     string   `json:"kind"` // "struct", "named", "sum" or "variant"
	Sum      string   `json:"sum,omitempty"`
	Variants []string `json:"variants,omitempty"`
	Impls    []Impl   `json:"impls,omitempty"`
}

// Report lists everything Generate derived.
type Report struct {
	Package string     `json:"package"`
	Path    string     `json:"path"`
	Types   []*Derived `json:"types"`
}

type directive struct {
	name  string
	pos   token.Pos
	preds []Predicate
}

// Generate returns the gofmt'ed source of the derive file for pkg, and a report
// of what it contains. output is the base name of the generated file; methods
// declared in that file are ignored, so regenerating over a previous run is
// stable.
func Generate(pkg *Package, output string) ([]byte, *Report, error) {
	if output == "" {
		output = DefaultOutput
	}
	g := newGenerator(pkg, output)

	dirs, err := g.directives()
	if err != nil {
		return nil, nil, err
	}
	if len(dirs) == 0 {
		return nil, nil, ErrNoDirective
	}

	for _, d := range dirs {
		if err := g.derive(d); err != nil {
			return nil, nil, err
		}
	}

	src, err := g.emit()
	if err != nil {
		return nil, nil, err
	}

	report := &Report{
		Package: pkg.Types.Name(),
		Path:    pkg.Path,
		Types:   g.order,
	}
	return src, report, nil
}

// directives collects derive directives in source order.
func (g *generator) directives() ([]directive, error) {
	var out []directive
	for _, file := range g.pkg.Files {
		if g.generated(file.Pos()) {
			continue
		}
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				preds, err := g.parseDoc(doc)
				if err != nil {
					return nil, err
				}
				if len(preds) > 0 {
					out = append(out, directive{name: ts.Name.Name, pos: ts.Pos(), preds: preds})
				}
			}
		}
	}
	return out, nil
}

func (g *generator) parseDoc(doc *ast.CommentGroup) ([]Predicate, error) {
	if doc == nil {
		return nil, nil
	}
	var preds []Predicate
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue // some other directive sharing the prefix
		}
		words, err := shlex.Split(rest)
		if err != nil {
			return nil, fmt.Errorf("%s: malformed directive: %w", g.pkg.Fset.Position(c.Pos()), err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("%s: directive names no predicate", g.pkg.Fset.Position(c.Pos()))
		}
		for _, w := range words {
			p, ok := parsePredicate(w)
			if !ok {
				return nil, fmt.Errorf("%s: unknown predicate %q (want transferable or shareable)", g.pkg.Fset.Position(c.Pos()), w)
			}
			preds = appendPredicate(preds, p)
		}
	}
	return preds, nil
}

func appendPredicate(preds []Predicate, p Predicate) []Predicate {
	for _, q := range preds {
		if q == p {
			return preds
		}
	}
	return append(preds, p)
}

// derive handles one directive.
func (g *generator) derive(d directive) error {
	pos := g.pkg.Fset.Position(d.pos)

	obj, ok := g.pkg.Types.Scope().Lookup(d.name).(*types.TypeName)
	if !ok || obj.IsAlias() {
		return fmt.Errorf("%s: %s is not a defined type", pos, d.name)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return fmt.Errorf("%s: %s is not a defined type", pos, d.name)
	}
	if named.TypeParams().Len() > 0 {
		return fmt.Errorf("%s: %s: %w", pos, d.name, ErrGeneric)
	}

	if iface, ok := named.Underlying().(*types.Interface); ok {
		return g.deriveSum(pos, named, iface, d.preds)
	}

	for _, p := range d.preds {
		if g.declared(named, p) {
			return fmt.Errorf("%s: %s already declares %s", pos, d.name, p.Method())
		}
	}
	kind := "named"
	if _, ok := named.Underlying().(*types.Struct); ok {
		kind = "struct"
	}
	return g.deriveConcrete(pos, named, kind, "", d.preds)
}

// deriveSum derives every variant of a sealed interface.
func (g *generator) deriveSum(pos token.Position, named *types.Named, iface *types.Interface, preds []Predicate) error {
	name := named.Obj().Name()

	for _, p := range preds {
		if !hasMethod(iface, p.Method()) {
			return fmt.Errorf("%s: sum type %s must embed marker.%s", pos, name, p.Interface())
		}
	}

	var sealing []*types.Func
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		if m.Name() == Transferable.Method() || m.Name() == Shareable.Method() {
			continue
		}
		sig := m.Type().(*types.Signature)
		sealing = append(sealing, types.NewFunc(m.Pos(), m.Pkg(), m.Name(),
			types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())))
	}
	if len(sealing) == 0 {
		return fmt.Errorf("%s: sum type %s needs at least one method besides the markers", pos, name)
	}
	shape := types.NewInterfaceType(sealing, nil).Complete()

	var variants []*types.Named
	scope := g.pkg.Types.Scope()
	for _, n := range scope.Names() {
		obj, ok := scope.Lookup(n).(*types.TypeName)
		if !ok || obj.IsAlias() {
			continue
		}
		v, ok := obj.Type().(*types.Named)
		if !ok || v == named || v.TypeParams().Len() > 0 || types.IsInterface(v) {
			continue
		}
		if types.Implements(v, shape) || types.Implements(types.NewPointer(v), shape) {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return fmt.Errorf("%s: sum type %s has no variants", pos, name)
	}
	sort.Slice(variants, func(i, j int) bool {
		return variants[i].Obj().Pos() < variants[j].Obj().Pos()
	})

	sum := g.entry(name, "sum", "")
	for _, v := range variants {
		sum.Variants = append(sum.Variants, v.Obj().Name())

		var todo []Predicate
		for _, p := range preds {
			if g.declared(v, p) {
				ve := g.entry(v.Obj().Name(), "variant", name)
				ve.Impls = append(ve.Impls, Impl{Predicate: p.Word(), Declared: true})
				continue
			}
			todo = append(todo, p)
		}
		if len(todo) == 0 {
			continue
		}
		vpos := g.pkg.Fset.Position(v.Obj().Pos())
		if err := g.deriveConcrete(vpos, v, "variant", name, todo); err != nil {
			return err
		}
	}
	return nil
}

// deriveConcrete classifies the members of a non-interface named type and
// records the checks and marker methods to emit.
func (g *generator) deriveConcrete(pos token.Position, named *types.Named, kind, sum string, preds []Predicate) error {
	name := named.Obj().Name()
	if _, ok := named.Underlying().(*types.Pointer); ok {
		return fmt.Errorf("%s: %s: pointer types cannot declare methods", pos, name)
	}

	e := g.entry(name, kind, sum)
	for _, p := range preds {
		if e.has(p) {
			continue
		}
		var checks []Check
		var err error
		if st, ok := named.Underlying().(*types.Struct); ok {
			checks, err = g.classifyFields(st, "", p)
		} else {
			checks, err = g.classify(named.Underlying(), "", p)
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", pos, name, err)
		}
		e.Impls = append(e.Impls, Impl{Predicate: p.Word(), Checks: checks})
	}
	return nil
}

func (d *Derived) has(p Predicate) bool {
	for _, impl := range d.Impls {
		if impl.Predicate == p.Word() {
			return true
		}
	}
	return false
}

// declared reports whether named carries p's method from a file other than
// the generated one.
func (g *generator) declared(named *types.Named, p Predicate) bool {
	for _, t := range []types.Type{named, types.NewPointer(named)} {
		sel := types.NewMethodSet(t).Lookup(nil, p.Method())
		if sel != nil && !g.generated(sel.Obj().Pos()) {
			return true
		}
	}
	return false
}

func (g *generator) generated(pos token.Pos) bool {
	if !pos.IsValid() {
		return false
	}
	return filepath.Base(g.pkg.Fset.Position(pos).Filename) == g.output
}

func hasMethod(iface *types.Interface, name string) bool {
	for i := 0; i < iface.NumMethods(); i++ {
		if iface.Method(i).Name() == name {
			return true
		}
	}
	return false
}
