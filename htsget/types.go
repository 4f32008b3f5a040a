// Package htsget implements the GA4GH htsget ticket-resolution core:
// given a logical Query, compute the minimal merged set of byte ranges
// a client must fetch to honor it, over a format-specific binary index,
// without ever reading or re-encoding record payloads.
package htsget

import (
	"encoding/base64"
	"encoding/json"
)

// Format names the file format a Query targets.
type Format int

const (
	FormatBAM Format = iota
	FormatCRAM
	FormatVCF
	FormatBCF
)

func (f Format) String() string {
	switch f {
	case FormatBAM:
		return "BAM"
	case FormatCRAM:
		return "CRAM"
	case FormatVCF:
		return "VCF"
	case FormatBCF:
		return "BCF"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders Format as its wire name rather than its
// underlying int.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// FileSuffix returns the canonical suffix the storage key for the
// format's primary data file carries.
func (f Format) FileSuffix() string {
	switch f {
	case FormatBAM:
		return ".bam"
	case FormatCRAM:
		return ".cram"
	case FormatVCF:
		return ".vcf.gz"
	case FormatBCF:
		return ".bcf"
	default:
		return ""
	}
}

// IndexSuffix returns the canonical suffix of the format's primary
// index file (BAI/CRAI/TBI/CSI).
func (f Format) IndexSuffix() string {
	switch f {
	case FormatBAM:
		return ".bam.bai"
	case FormatCRAM:
		return ".cram.crai"
	case FormatVCF:
		return ".vcf.gz.tbi"
	case FormatBCF:
		return ".bcf.csi"
	default:
		return ""
	}
}

// GziSuffix returns the suffix of the format's optional GZI side index,
// or "" if the format never carries one (CRAM has no BGZF layer).
func (f Format) GziSuffix() string {
	switch f {
	case FormatBAM:
		return ".bam.gzi"
	case FormatVCF:
		return ".vcf.gz.gzi"
	case FormatBCF:
		return ".bcf.gzi"
	default:
		return ""
	}
}

// Class distinguishes header bytes from record-body bytes in both a
// Query (which Class is being requested) and a resolved Url/BytesPosition
// (which Class that chunk belongs to).
type Class int

const (
	ClassHeader Class = iota
	ClassBody
)

func (c Class) String() string {
	if c == ClassHeader {
		return "header"
	}
	return "body"
}

// Interval is a half-open, 0-based genomic interval. A nil Start means
// "from the beginning of the reference sequence"; a nil End means "to
// the end of the reference sequence".
type Interval struct {
	Start *uint32
	End   *uint32
}

// Fields and Tags are accepted by Query for protocol compatibility but
// never affect the computed byte ranges (spec Non-goal: no server-side
// record filtering).
type Query struct {
	ID              string
	Format          Format
	Class           Class
	ReferenceName   *string
	Interval        Interval
	Fields          []string
	Tags            []string
	NoTags          []string
}

// AllReferenceSequences reports whether the query targets every
// reference sequence (no ReferenceName given) rather than one named
// sequence's region.
func (q Query) AllReferenceSequences() bool {
	return q.ReferenceName == nil
}

// Unplaced reports whether the query explicitly asks for the unplaced-
// unmapped reads/records: a "*" reference name, as sent in the wire
// protocol, or an empty, non-nil ReferenceName.
func (q Query) Unplaced() bool {
	return q.ReferenceName != nil && (*q.ReferenceName == "*" || *q.ReferenceName == "")
}

// BytesPosition is a single contiguous byte range within a storage
// object, optionally tagged with the Class of data it holds.
type BytesPosition struct {
	Start uint64
	End   uint64
	Class Class
	// HasClass distinguishes "this range has no class yet" (used
	// internally while merging, before UpdateClasses runs) from an
	// explicit ClassHeader value.
	HasClass bool
}

// WithClass returns a copy of p carrying the given Class.
func (p BytesPosition) WithClass(c Class) BytesPosition {
	p.Class = c
	p.HasClass = true
	return p
}

// Len returns the number of bytes the position spans.
func (p BytesPosition) Len() uint64 {
	if p.End < p.Start {
		return 0
	}
	return p.End - p.Start
}

// Url is one entry of a resolved Response: either a reference to a byte
// range of the original data (possibly rewritten to a storage-specific
// URL) or an inline literal (used only for the fixed BGZF EOF marker).
type Url struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Class   *Class            `json:"class,omitempty"`
	// Data holds literal bytes for inline URLs (data: URIs); empty for
	// byte-range URLs.
	Data []byte `json:"-"`
}

// MarshalJSON renders Class as the lowercase wire string ("header"/
// "body") rather than its underlying int, and renders Data (when set)
// as a data: URI in place of URL, matching the htsget wire format for
// inline blocks.
func (u Url) MarshalJSON() ([]byte, error) {
	type wire struct {
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers,omitempty"`
		Class   string            `json:"class,omitempty"`
	}
	w := wire{URL: u.URL, Headers: u.Headers}
	if u.Class != nil {
		w.Class = u.Class.String()
	}
	if len(u.Data) > 0 {
		w.URL = "data:;base64," + base64.StdEncoding.EncodeToString(u.Data)
	}
	return json.Marshal(w)
}

// Response is the fully resolved ticket for one Query.
type Response struct {
	Format Format `json:"format"`
	URLs   []Url  `json:"urls"`
}
