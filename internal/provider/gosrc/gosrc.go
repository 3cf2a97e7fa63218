// Package gosrc exposes loaded Go packages as a browsable hierarchy:
// packages, their imports, and the declarations in their top-level scope.
package gosrc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"go/types"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/atomicstack/node-browser/internal/tree"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// ErrNoPackages is returned when a pattern matches nothing.
var ErrNoPackages = errors.New("no packages matched")

// Root is the top of a loaded package set.
type Root struct {
	pattern string
	pkgs    []*packages.Package
}

// Open loads the packages matching pattern. A directory is loaded as
// "<dir>/...".
func Open(ctx context.Context, pattern string) (*Root, error) {
	cfg := &packages.Config{Context: ctx, Mode: loadMode}
	patterns := []string{pattern}
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		cfg.Dir = pattern
		patterns = []string{"./..."}
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("load %s: %w", pattern, ErrNoPackages)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	return &Root{pattern: pattern, pkgs: pkgs}, nil
}

func (r *Root) Label() string {
	return "go " + r.pattern
}

func (r *Root) Children() ([]tree.Provider, error) {
	out := make([]tree.Provider, 0, len(r.pkgs))
	for _, pkg := range r.pkgs {
		out = append(out, &packageNode{pkg: pkg})
	}
	return out, nil
}

func (r *Root) DetailText() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "pattern  %s\npackages %d\n\n", r.pattern, len(r.pkgs))
	for _, pkg := range r.pkgs {
		fmt.Fprintf(&b, "%s (%d files)\n", pkg.PkgPath, len(pkg.GoFiles))
	}
	return b.String(), nil
}

type packageNode struct {
	pkg *packages.Package
}

func (p *packageNode) Label() string {
	if p.pkg.PkgPath != "" {
		return p.pkg.PkgPath
	}
	return p.pkg.ID
}

func (p *packageNode) Children() ([]tree.Provider, error) {
	var out []tree.Provider
	if len(p.pkg.Imports) > 0 {
		out = append(out, &importsNode{pkg: p.pkg})
	}
	if p.pkg.Types == nil {
		return nil, fmt.Errorf("package %s has no type information", p.Label())
	}
	scope := p.pkg.Types.Scope()
	var typeDecls, funcs, values []tree.Provider
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.TypeName:
			typeDecls = append(typeDecls, &typeNode{pkg: p.pkg, obj: obj})
		case *types.Func:
			funcs = append(funcs, &declNode{pkg: p.pkg, obj: obj, kind: "func"})
		case *types.Var:
			values = append(values, &declNode{pkg: p.pkg, obj: obj, kind: "var"})
		case *types.Const:
			values = append(values, &declNode{pkg: p.pkg, obj: obj, kind: "const"})
		}
	}
	out = append(out, typeDecls...)
	out = append(out, funcs...)
	return append(out, values...), nil
}

func (p *packageNode) DetailText() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s\npath    %s\n", p.pkg.Name, p.pkg.PkgPath)
	if p.pkg.Types != nil {
		fmt.Fprintf(&b, "objects %d\n", p.pkg.Types.Scope().Len())
	}
	b.WriteString("\nfiles:\n")
	for _, f := range p.pkg.GoFiles {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	if len(p.pkg.Errors) > 0 {
		b.WriteString("\nerrors:\n")
		for _, e := range p.pkg.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String(), nil
}

type importsNode struct {
	pkg *packages.Package
}

func (n *importsNode) Label() string {
	return "Imports"
}

func (n *importsNode) Children() ([]tree.Provider, error) {
	paths := make([]string, 0, len(n.pkg.Imports))
	for path := range n.pkg.Imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	out := make([]tree.Provider, 0, len(paths))
	for _, path := range paths {
		out = append(out, &importNode{path: path, pkg: n.pkg.Imports[path]})
	}
	return out, nil
}

func (n *importsNode) DetailText() (string, error) {
	return fmt.Sprintf("%d imports of %s", len(n.pkg.Imports), n.pkg.PkgPath), nil
}

type importNode struct {
	path string
	pkg  *packages.Package
}

func (n *importNode) Label() string {
	return n.path
}

func (n *importNode) Children() ([]tree.Provider, error) {
	return nil, nil
}

func (n *importNode) DetailText() (string, error) {
	if n.pkg == nil {
		return "import " + n.path, nil
	}
	return fmt.Sprintf("import %q\nname   %s\nfiles  %d", n.path, n.pkg.Name, len(n.pkg.GoFiles)), nil
}

type typeNode struct {
	pkg *packages.Package
	obj *types.TypeName
}

func (n *typeNode) Label() string {
	return "type " + n.obj.Name()
}

func (n *typeNode) Children() ([]tree.Provider, error) {
	var out []tree.Provider
	if st, ok := n.obj.Type().Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			out = append(out, &declNode{pkg: n.pkg, obj: st.Field(i), kind: "field"})
		}
	}
	if named, ok := n.obj.Type().(*types.Named); ok {
		for i := 0; i < named.NumMethods(); i++ {
			out = append(out, &declNode{pkg: n.pkg, obj: named.Method(i), kind: "method"})
		}
	}
	return out, nil
}

func (n *typeNode) DetailText() (string, error) {
	return describe(n.pkg, n.obj)
}

// declNode is a leaf declaration: func, method, field, var or const.
type declNode struct {
	pkg  *packages.Package
	obj  types.Object
	kind string
}

func (n *declNode) Label() string {
	return n.kind + " " + n.obj.Name()
}

func (n *declNode) Children() ([]tree.Provider, error) {
	return nil, nil
}

func (n *declNode) DetailText() (string, error) {
	return describe(n.pkg, n.obj)
}

func describe(pkg *packages.Package, obj types.Object) (string, error) {
	var b strings.Builder
	b.WriteString(types.ObjectString(obj, types.RelativeTo(pkg.Types)))
	if pos := pkg.Fset.Position(obj.Pos()); pos.IsValid() {
		fmt.Fprintf(&b, "\n%s", pos)
	}
	node := findDecl(pkg, obj.Pos())
	if node == nil {
		return b.String(), nil
	}
	var src bytes.Buffer
	if err := format.Node(&src, pkg.Fset, node); err != nil {
		return "", fmt.Errorf("format %s: %w", obj.Name(), err)
	}
	b.WriteString("\n\n")
	b.Write(src.Bytes())
	return b.String(), nil
}

// findDecl returns the declaration or spec that introduces the object at pos.
// Struct fields resolve to nothing; their object string is enough.
func findDecl(pkg *packages.Package, pos token.Pos) ast.Node {
	if !pos.IsValid() {
		return nil
	}
	for _, file := range pkg.Syntax {
		if pos < file.Pos() || pos > file.End() {
			continue
		}
		for _, decl := range file.Decls {
			if pos < decl.Pos() || pos >= decl.End() {
				continue
			}
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Name.Pos() == pos {
					return d
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					if specNames(spec, pos) {
						if len(d.Specs) == 1 {
							return d
						}
						return spec
					}
				}
			}
			return nil
		}
	}
	return nil
}

func specNames(spec ast.Spec, pos token.Pos) bool {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Name.Pos() == pos
	case *ast.ValueSpec:
		for _, name := range s.Names {
			if name.Pos() == pos {
				return true
			}
		}
	}
	return false
}
