package htsget

import (
	"context"

	"github.com/htsget-io/htsget-server/bgzf"
	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/storage"
	"golang.org/x/sync/errgroup"
)

// buildResponse turns a merged, classified list of byte ranges into a
// ticket Response, resolving each range to a Url concurrently while
// preserving input order — an indexed result slice rather than a
// completion-ordered queue, so a slow RangeURL call for an early range
// never reorders the ticket.
func buildResponse(ctx context.Context, backend storage.Backend, key string, format Format, class Class, ranges []BytesPosition) (*Response, error) {
	urls := make([]Url, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for i, rng := range ranges {
		i, rng := i, rng
		g.Go(func() error {
			// BytesPosition.End is exclusive; a Range header names its
			// last byte inclusively.
			last := rng.End
			if last > rng.Start {
				last--
			}
			u, headers, err := backend.RangeURL(gctx, key, storage.RangeURLOptions{
				Start: rng.Start,
				End:   last,
			})
			if err != nil {
				return herr.IO("buildResponse", err)
			}
			url := Url{URL: u, Headers: headers}
			if rng.HasClass {
				c := rng.Class
				url.Class = &c
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if formatUsesBGZF(format) && class != ClassHeader {
		eofClass := ClassBody
		urls = append(urls, Url{Data: bgzf.EOF, Class: &eofClass})
	}

	return &Response{Format: format, URLs: urls}, nil
}

func formatUsesBGZF(f Format) bool {
	return f == FormatBAM || f == FormatVCF || f == FormatBCF
}
