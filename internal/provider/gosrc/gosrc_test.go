package gosrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/node-browser/internal/tree"
)

const sampleSource = `package sample

import "strings"

// Greeter says hello.
type Greeter struct {
	Name string
}

func (g Greeter) Greet() string {
	return "hello " + strings.ToUpper(g.Name)
}

const Version = "1"

var Default = Greeter{Name: "world"}

func New(name string) *Greeter { return &Greeter{Name: name} }
`

func writeModule(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("loads packages through the go command")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/sample\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.go"), []byte(sampleSource), 0o644))
	return dir
}

func labels(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label()
	}
	return out
}

func childByLabel(t *testing.T, n *tree.Node, label string) *tree.Node {
	t.Helper()
	for _, c := range n.Children() {
		if c.Label() == label {
			return c
		}
	}
	t.Fatalf("expected child %q under %q, got %v", label, n.Label(), labels(n.Children()))
	return nil
}

func TestOpenBuildsHierarchy(t *testing.T) {
	dir := writeModule(t)
	root, err := Open(context.Background(), dir)
	require.NoError(t, err)

	tr := tree.New(dir, root)
	pkgs := tr.Root().Children()
	require.Len(t, pkgs, 1)
	assert.Equal(t, "example.com/sample", pkgs[0].Label())

	assert.Equal(t, []string{
		"Imports",
		"type Greeter",
		"func New",
		"var Default",
		"const Version",
	}, labels(pkgs[0].Children()))

	imports := childByLabel(t, pkgs[0], "Imports")
	assert.Equal(t, []string{"strings"}, labels(imports.Children()))

	greeter := childByLabel(t, pkgs[0], "type Greeter")
	assert.Equal(t, []string{"field Name", "method Greet"}, labels(greeter.Children()))
}

func TestDetailTextCarriesSource(t *testing.T) {
	dir := writeModule(t)
	root, err := Open(context.Background(), dir)
	require.NoError(t, err)
	pkg := tree.New(dir, root).Root().Children()[0]

	text := childByLabel(t, pkg, "func New").DetailText()
	assert.Contains(t, text, "func New(name string) *Greeter")
	assert.Contains(t, text, "sample.go:")

	method := childByLabel(t, childByLabel(t, pkg, "type Greeter"), "method Greet").DetailText()
	assert.Contains(t, method, `return "hello " + strings.ToUpper(g.Name)`)

	field := childByLabel(t, childByLabel(t, pkg, "type Greeter"), "field Name").DetailText()
	assert.Contains(t, field, "field Name string")

	assert.Contains(t, pkg.DetailText(), "package sample")
	assert.Equal(t, tree.DetailReady, pkg.DetailState().Status)
}

func TestOpenFailsWithoutPackages(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages through the go command")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/empty\n"), 0o644))
	_, err := Open(context.Background(), dir)
	assert.Error(t, err)
}
