package core

import "context"

// ChromInfo is one reference sequence's identity (spec.md §6's
// ReferenceFasta.ListChroms).
type ChromInfo struct {
	Name   string
	Index  int
	Length int
}

// ReferenceFasta is the collaborator interface core depends on for
// chromosome metadata, region-spec parsing, and sequence fetch (spec.md
// §6). htsio provides the production implementation; tests supply fakes.
type ReferenceFasta interface {
	ListChroms() []ChromInfo
	// ParseRegion accepts samtools-style specs: "chr", "chr:start-end",
	// "chr:start-", "chr:-end", and "{name}:start-end" for colon-containing
	// names.
	ParseRegion(spec string) (Region, error)
	// Fetch returns the canonicalized uppercase sequence (non-ACGT replaced
	// with 'N') for a closed 1-based interval.
	Fetch(chromIndex, start1, end1 int) (string, error)
}

// AlignmentFlags mirrors the bitwise SAM flags AlignmentStream exposes
// (spec.md §6).
type AlignmentFlags struct {
	Duplicate    bool
	QCFail       bool
	Secondary    bool
	Paired       bool
	ProperPair   bool
	MateUnmapped bool
	ReverseStrand bool
	MateReverse  bool
	Read1        bool
	Read2        bool
}

// Alignment is one read record as AlignmentStream exposes it (spec.md §6).
type Alignment struct {
	ChromIndex     int
	Start0         int
	End0           int
	MateChromIndex int
	MateStart0     int
	InsertSize     int
	Flags          AlignmentFlags
	MapQual        int
	QName          string
	Sequence       string
	BaseQuals      []byte
	CIGAR          []CIGAROp
	Tags           map[string]interface{}
}

// CIGAROp is one CIGAR operation.
type CIGAROp struct {
	Op  byte // M, I, D, S, H, N, P, =, X
	Len int
}

// AlignmentStream is the collaborator interface for streaming alignments
// scoped to a region (spec.md §6).
type AlignmentStream interface {
	// Fetch streams alignments overlapping region. The returned iterator
	// must be closed.
	Fetch(ctx context.Context, region Region) (AlignmentIterator, error)
	// FetchMulti streams alignments overlapping any of the given 0-based
	// point coordinates' containing regions (used by the mate-rescue pass,
	// spec.md §4.2 step 3).
	FetchMulti(ctx context.Context, coords []MateCoord) (AlignmentIterator, error)
}

// MateCoord is one (chrom, pos) pair to fetch a mate at.
type MateCoord struct {
	ChromIndex int
	Pos0       int
}

// AlignmentIterator yields Alignments one at a time.
type AlignmentIterator interface {
	Next() bool
	Alignment() Alignment
	Close() error
}
