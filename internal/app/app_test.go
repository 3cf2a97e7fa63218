package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/atomicstack/node-browser/internal/browser"
	"github.com/atomicstack/node-browser/internal/testutil"
	"github.com/atomicstack/node-browser/internal/tree"
)

func TestPrintWritesOutlineAndRootDetail(t *testing.T) {
	docs := map[string]tree.Provider{
		"a.db": testutil.Branch("a", "a root text", testutil.Leaf("t1", "")),
		"b.db": testutil.Branch("b", "b root text", testutil.Branch("t2", "", testutil.Leaf("c", ""))),
	}
	session := browser.New(browser.Options{})
	defer func() {
		session.Close()
		session.Wait()
	}()
	for _, source := range []string{"a.db", "b.db"} {
		session.Attach(source, docs[source])
	}

	var buf bytes.Buffer
	if err := Print(context.Background(), session, &buf, 1, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "== a.db#1 (a.db)\na\n  t1\n\na root text\n\n== b.db#2 (b.db)\nb\n  t2\n\nb root text\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output\nexpected:\n%s\nactual:\n%s", want, got)
	}
}

func TestRunFailsOnUnsupportedSource(t *testing.T) {
	testutil.QuietLogs(t)
	err := Run(Config{Sources: []string{""}, Print: true})
	if err == nil {
		t.Fatalf("expected error for empty source")
	}
}
