// Package cbdg implements the colored, compacted, bidirected de Bruijn graph
// (cDBG) assembler at the heart of Lancet's per-window variant discovery
// (spec.md §4.3, §4.4): Kmer canonicalization, the Node/Edge table, graph
// construction, pruning/compression, cycle detection, source/sink
// anchoring, and the max-flow-like haplotype walker.
package cbdg

import (
	"github.com/nygenome/lancet/biosimd"
)

// Sign records which strand a k-mer's canonical sequence was read from.
type Sign int8

const (
	// Plus means the original sequence lexicographically precedes its
	// reverse complement.
	Plus Sign = iota
	Minus
)

func (s Sign) reverse() Sign {
	if s == Plus {
		return Minus
	}
	return Plus
}

// Ordering selects one of a node's two equivalent sequence orientations.
type Ordering int8

const (
	// Default is the node's canonical (Plus-sign) orientation.
	Default Ordering = iota
	// Opposite is the reverse-complement orientation.
	Opposite
)

func (o Ordering) reverse() Ordering {
	if o == Default {
		return Opposite
	}
	return Default
}

// Kmer is a canonicalized odd-length DNA k-mer (spec.md §3). It stores both
// strand sequences so a node built from it can be walked in either
// direction without recomputing a reverse complement.
type Kmer struct {
	id       NodeID
	sign     Sign
	dfltSeq  string // canonical (lexicographically smaller of seq / revcomp(seq))
	oppoSeq  string // reverse complement of dfltSeq
}

// revComp returns the reverse complement of an ACGTN sequence.
func revComp(seq string) string {
	out := make([]byte, len(seq))
	biosimd.ReverseComp8NoValidate(out, []byte(seq))
	return string(out)
}

// NewKmer canonicalizes seq (assumed upper-case ACGTN, odd length) into a
// Kmer. sign is Plus when seq already equals its canonical form.
func NewKmer(seq string) Kmer {
	rc := revComp(seq)
	if seq <= rc {
		return Kmer{id: hashSeq(seq), sign: Plus, dfltSeq: seq, oppoSeq: rc}
	}
	return Kmer{id: hashSeq(rc), sign: Minus, dfltSeq: rc, oppoSeq: seq}
}

// ID is the hash of the canonical sequence; it is the graph's NodeID.
func (k Kmer) ID() NodeID { return k.id }

// Sign reports whether the input sequence that produced this Kmer was
// already in canonical (Plus) form.
func (k Kmer) Sign() Sign { return k.sign }

// SeqFor returns the sequence for the requested orientation.
func (k Kmer) SeqFor(ord Ordering) string {
	if ord == Default {
		return k.dfltSeq
	}
	return k.oppoSeq
}

// Len is the k-mer length (both orientations have equal length).
func (k Kmer) Len() int { return len(k.dfltSeq) }

// CanonicalHash hashes seq's canonical form without constructing a Kmer; it
// yields the same NodeID that NewKmer(seq).ID() does. The graph builder
// itself constructs full Kmers; graph_test.go uses this to check fixtures.
func CanonicalHash(seq string) NodeID {
	rc := revComp(seq)
	if seq <= rc {
		return hashSeq(seq)
	}
	return hashSeq(rc)
}

// RevSign flips a Sign; exported for callers in the graph package that
// compose edge kinds from endpoint signs.
func RevSign(s Sign) Sign { return s.reverse() }

// RevOrdering flips an Ordering.
func RevOrdering(o Ordering) Ordering { return o.reverse() }

// SignToOrdering maps a Sign to the Ordering whose SeqFor matches it: a
// node's Default-orientation sequence corresponds to whichever Sign it was
// originally assigned, Opposite to the flip.
func SignToOrdering(nodeDefaultSign, want Sign) Ordering {
	if nodeDefaultSign == want {
		return Default
	}
	return Opposite
}
