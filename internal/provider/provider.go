// Package provider opens documents as tree providers, choosing the
// implementation from the shape of the source.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/provider/gosrc"
	"github.com/atomicstack/node-browser/internal/provider/sqlschema"
	"github.com/atomicstack/node-browser/internal/tree"
)

// ErrUnsupportedSource is returned for sources no provider understands.
var ErrUnsupportedSource = errors.New("unsupported source")

type Kind string

const (
	KindGo     Kind = "go"
	KindSQLite Kind = "sqlite"
)

// Detect picks the provider kind for source. SQLite files are recognised by
// extension; directories, .go files and package patterns load as Go.
func Detect(source string) (Kind, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("empty source: %w", ErrUnsupportedSource)
	}
	if sqlschema.IsDatabase(source) {
		return KindSQLite, nil
	}
	if info, err := os.Stat(source); err == nil && !info.IsDir() && filepath.Ext(source) != ".go" {
		return "", fmt.Errorf("%s: %w", source, ErrUnsupportedSource)
	}
	return KindGo, nil
}

// Open resolves source into a provider.
func Open(ctx context.Context, source string) (tree.Provider, error) {
	kind, err := Detect(source)
	if err != nil {
		events.Provider.OpenFailed(source, err)
		return nil, err
	}
	events.Provider.Open(string(kind), source)
	var p tree.Provider
	switch kind {
	case KindSQLite:
		p, err = sqlschema.Open(ctx, source)
	default:
		p, err = gosrc.Open(ctx, source)
	}
	if err != nil {
		events.Provider.OpenFailed(source, err)
		return nil, err
	}
	return p, nil
}

// OpenAll opens every source concurrently. Results keep the order of sources;
// the first failure cancels the rest and releases what was already opened.
func OpenAll(ctx context.Context, sources []string) ([]tree.Provider, error) {
	out := make([]tree.Provider, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			p, err := Open(ctx, source)
			if err != nil {
				return fmt.Errorf("open %s: %w", source, err)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, p := range out {
			if p != nil {
				Close(p)
			}
		}
		return nil, err
	}
	return out, nil
}

// Close releases resources held by p, if it holds any.
func Close(p tree.Provider) error {
	if c, ok := p.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
