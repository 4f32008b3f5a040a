package htsget

import (
	"context"
	"fmt"

	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/storage"
)

// ReferenceNameResolverFactory builds a ReferenceNameResolver scoped to
// one storage key (e.g. reading a sidecar reference-dictionary file).
// The resolver package never parses BAM/CRAM headers itself (see
// ReferenceNameResolver's doc comment) — this factory is how a caller
// plugs in whatever header/dictionary access it has.
type ReferenceNameResolverFactory func(ctx context.Context, backend storage.Backend, key string) (ReferenceNameResolver, error)

// Dispatcher builds the right Searcher for a Query's Format and runs it.
// This is the resolver's single public entry point, matching spec's
// format-dispatcher/ticket-builder component.
type Dispatcher struct {
	Storage          storage.Backend
	ResolveReference ReferenceNameResolverFactory
}

// NewDispatcher builds a Dispatcher over backend, using resolveReference
// to obtain a ReferenceNameResolver for formats whose index carries no
// reference names (BAM, BCF, CRAM).
func NewDispatcher(backend storage.Backend, resolveReference ReferenceNameResolverFactory) *Dispatcher {
	return &Dispatcher{Storage: backend, ResolveReference: resolveReference}
}

// Resolve computes the ticket Response for query. key is the storage
// key the id resolved to (post id-resolution — see the idresolver
// package), without a file extension; the data/index/gzi keys are
// derived by appending the format's standard suffixes.
func (d *Dispatcher) Resolve(ctx context.Context, key string, query Query) (*Response, error) {
	dataKey := key + query.Format.FileSuffix()
	indexKey := key + query.Format.IndexSuffix()
	gziKey := ""
	if s := query.Format.GziSuffix(); s != "" {
		gziKey = key + s
	}

	switch query.Format {
	case FormatBAM:
		resolver, err := d.refResolver(ctx, dataKey)
		if err != nil {
			return nil, err
		}
		return NewBAMSearch(d.Storage, dataKey, indexKey, gziKey, resolver).Search(ctx, d.Storage, query)
	case FormatVCF:
		return NewVCFSearch(d.Storage, dataKey, indexKey, gziKey).Search(ctx, d.Storage, query)
	case FormatBCF:
		resolver, err := d.refResolver(ctx, dataKey)
		if err != nil {
			return nil, err
		}
		return NewBCFSearch(d.Storage, dataKey, indexKey, gziKey, resolver).Search(ctx, d.Storage, query)
	case FormatCRAM:
		resolver, err := d.refResolver(ctx, dataKey)
		if err != nil {
			return nil, err
		}
		return NewCRAMSearch(d.Storage, dataKey, indexKey, resolver).Search(ctx, d.Storage, query)
	default:
		return nil, herr.UnsupportedFormat("Dispatcher.Resolve", fmt.Errorf("unsupported format %v", query.Format))
	}
}

func (d *Dispatcher) refResolver(ctx context.Context, key string) (ReferenceNameResolver, error) {
	if d.ResolveReference == nil {
		return func(string) (int, bool, error) { return 0, false, nil }, nil
	}
	return d.ResolveReference(ctx, d.Storage, key)
}
