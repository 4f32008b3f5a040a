package htsindex

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CRAIRecord is one line of a CRAM index: the byte range of one slice
// within the file, plus the reference-sequence placement and genomic
// span it covers. ReferenceSequenceID is -1 for unmapped-unplaced
// records.
type CRAIRecord struct {
	ReferenceSequenceID  int32
	AlignmentStart       int64
	AlignmentSpan        int64
	ContainerStartOffset int64
	SliceStartOffset     int64
	SliceSize            int64
}

// End returns the exclusive end of this record's alignment interval.
func (r CRAIRecord) End() int64 {
	return r.AlignmentStart + r.AlignmentSpan
}

// Unmapped reports whether this record carries no reference placement.
func (r CRAIRecord) Unmapped() bool {
	return r.ReferenceSequenceID == -1
}

// CRAIIndex is a parsed CRAM index (.crai): a gzip-compressed,
// tab-separated list of slice records, in file order.
type CRAIIndex struct {
	Records []CRAIRecord
}

// ReadCRAI parses a gzip-compressed CRAI stream.
func ReadCRAI(r io.Reader) (*CRAIIndex, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("htsindex: open CRAI gzip stream: %w", err)
	}
	defer gz.Close()

	idx := &CRAIIndex{}
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseCRAILine(line)
		if err != nil {
			return nil, fmt.Errorf("htsindex: parse CRAI line %d: %w", lineNo, err)
		}
		idx.Records = append(idx.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("htsindex: scan CRAI stream: %w", err)
	}
	return idx, nil
}

func parseCRAILine(line string) (CRAIRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return CRAIRecord{}, fmt.Errorf("expected 6 tab-separated fields, got %d", len(fields))
	}
	nums := make([]int64, 6)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return CRAIRecord{}, fmt.Errorf("field %d (%q): %w", i, f, err)
		}
		nums[i] = v
	}
	return CRAIRecord{
		ReferenceSequenceID:  int32(nums[0]),
		AlignmentStart:       nums[1],
		AlignmentSpan:        nums[2],
		ContainerStartOffset: nums[3],
		SliceStartOffset:     nums[4],
		SliceSize:            nums[5],
	}, nil
}
