package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/htsget-io/htsget-server/htsget"
	"github.com/htsget-io/htsget-server/storage"
)

// referenceNameResolverFactory is the htsget.ReferenceNameResolverFactory
// this server wires into its Dispatcher. BAI/CSI carry no reference
// names themselves, but the primary data file's own header does — BAM's
// binary reference list, BCF's ##contig lines — so the resolver is
// built by reading that fixed, small dictionary out of the file the
// query already names, never the variable-length record payloads after
// it.
func referenceNameResolverFactory(ctx context.Context, backend storage.Backend, key string) (htsget.ReferenceNameResolver, error) {
	switch {
	case strings.HasSuffix(key, ".bam"):
		names, err := readBAMReferenceNames(ctx, backend, key)
		if err != nil {
			return nil, err
		}
		return namesResolver(names), nil
	case strings.HasSuffix(key, ".bcf"):
		names, err := readBCFReferenceNames(ctx, backend, key)
		if err != nil {
			return nil, err
		}
		return namesResolver(names), nil
	default:
		// CRAM's own header is encoded with CRAM's block codec, not
		// BGZF/gzip, and has no decoder in this tree yet; named-
		// reference CRAM queries fail with NotFound until one is added.
		return func(string) (int, bool, error) { return 0, false, nil }, nil
	}
}

func namesResolver(names []string) htsget.ReferenceNameResolver {
	return func(name string) (int, bool, error) {
		for i, n := range names {
			if n == name {
				return i, true, nil
			}
		}
		return 0, false, nil
	}
}

// readBAMReferenceNames decodes just enough of a BAM file's binary
// header to list its reference sequences in index order. A BAM file is
// a sequence of concatenated BGZF blocks, each a self-contained gzip
// member, so compress/gzip's default Multistream behavior decodes them
// as one continuous byte stream with no BGZF-specific handling needed.
// The binary header layout (magic, l_text/text, n_ref, then per-
// reference l_name/name/l_ref) is read directly — the free-text SAM
// header is skipped unparsed, since the binary reference list already
// gives the name-to-ordinal mapping BAI/CSI chunk lookups need.
func readBAMReferenceNames(ctx context.Context, backend storage.Backend, key string) ([]string, error) {
	r, size, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("refnames: open %q: %w", key, err)
	}
	gz, err := gzip.NewReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("refnames: bgzf reader for %q: %w", key, err)
	}
	defer gz.Close()

	var magic [4]byte
	if _, err := io.ReadFull(gz, magic[:]); err != nil {
		return nil, fmt.Errorf("refnames: read BAM magic: %w", err)
	}
	if string(magic[:]) != "BAM\x01" {
		return nil, fmt.Errorf("refnames: %q is not a BAM file (bad magic)", key)
	}

	lText, err := readInt32(gz)
	if err != nil {
		return nil, err
	}
	if _, err := io.CopyN(io.Discard, gz, int64(lText)); err != nil {
		return nil, fmt.Errorf("refnames: skip SAM header text: %w", err)
	}

	nRef, err := readInt32(gz)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, nRef)
	for i := int32(0); i < nRef; i++ {
		lName, err := readInt32(gz)
		if err != nil {
			return nil, err
		}
		nameBuf := make([]byte, lName)
		if _, err := io.ReadFull(gz, nameBuf); err != nil {
			return nil, fmt.Errorf("refnames: read reference name %d: %w", i, err)
		}
		names = append(names, strings.TrimRight(string(nameBuf), "\x00"))
		if _, err := readInt32(gz); err != nil { // l_ref, unused
			return nil, err
		}
	}
	return names, nil
}

// bcfContigPattern matches a BCF header's ##contig=<ID=name,...> line;
// contigs appear in the header text in the same order the CSI index's
// integer contig IDs refer to.
var bcfContigPattern = regexp.MustCompile(`^##contig=<ID=([^,>]+)`)

// readBCFReferenceNames decodes a BCF file's plain-text header — itself
// BGZF-compressed the same way a BAM file is — and extracts its
// ##contig ID list in declaration order.
func readBCFReferenceNames(ctx context.Context, backend storage.Backend, key string) ([]string, error) {
	r, size, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("refnames: open %q: %w", key, err)
	}
	gz, err := gzip.NewReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("refnames: bgzf reader for %q: %w", key, err)
	}
	defer gz.Close()

	var magic [5]byte
	if _, err := io.ReadFull(gz, magic[:]); err != nil {
		return nil, fmt.Errorf("refnames: read BCF magic: %w", err)
	}
	if string(magic[:3]) != "BCF" {
		return nil, fmt.Errorf("refnames: %q is not a BCF file (bad magic)", key)
	}

	lText, err := readUint32(gz)
	if err != nil {
		return nil, err
	}
	text := make([]byte, lText)
	if _, err := io.ReadFull(gz, text); err != nil {
		return nil, fmt.Errorf("refnames: read BCF header text: %w", err)
	}

	var names []string
	scanner := bufio.NewScanner(strings.NewReader(string(text)))
	for scanner.Scan() {
		if m := bcfContigPattern.FindStringSubmatch(scanner.Text()); m != nil {
			names = append(names, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("refnames: scan BCF header text: %w", err)
	}
	return names, nil
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("refnames: read int32: %w", err)
	}
	return v, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("refnames: read uint32: %w", err)
	}
	return v, nil
}
