package cbdg

import (
	"encoding/binary"
	"math/bits"
)

const maxHammingMismatches = 3

// hammingWord64 computes the Hamming distance between two equal-length byte
// strings eight bytes at a time: XOR each aligned 8-byte chunk, then count
// the non-zero byte lanes (spec.md §4.3.1, §8's property test). Bytes past
// the last full 8-byte chunk are compared one at a time.
func hammingWord64(a, b []byte) int {
	if len(a) != len(b) {
		panic("cbdg: hammingWord64 requires equal-length inputs")
	}
	dist := 0
	n := len(a)
	i := 0
	for ; i+8 <= n; i += 8 {
		wa := binary.LittleEndian.Uint64(a[i : i+8])
		wb := binary.LittleEndian.Uint64(b[i : i+8])
		dist += countDifferingBytes(wa ^ wb)
	}
	for ; i < n; i++ {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}

// countDifferingBytes counts how many of the 8 bytes packed into xorWord
// are non-zero, i.e. how many byte lanes differed before the XOR.
func countDifferingBytes(xorWord uint64) int {
	count := 0
	for b := 0; b < 8; b++ {
		if byte(xorWord>>(8*b)) != 0 {
			count++
		}
	}
	return count
}

// hammingNaive is the straightforward reference implementation used only by
// the property test that checks it against hammingWord64 (spec.md §8).
func hammingNaive(a, b []byte) int {
	if len(a) != len(b) {
		panic("cbdg: hammingNaive requires equal-length inputs")
	}
	dist := 0
	for i := range a {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}

// hasExactRepeat reports whether seqs contains any duplicate k-mer.
func hasExactRepeat(seqs []string) bool {
	seen := make(map[string]struct{}, len(seqs))
	for _, s := range seqs {
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}

// hasApproximateRepeat reports whether any pair of seqs has Hamming
// distance <= maxMismatches.
func hasApproximateRepeat(seqs []string, maxMismatches int) bool {
	for i := 0; i < len(seqs); i++ {
		for j := i + 1; j < len(seqs); j++ {
			if hammingWord64([]byte(seqs[i]), []byte(seqs[j])) <= maxMismatches {
				return true
			}
		}
	}
	return false
}

// slidingWindows returns all length-window substrings of seq, in order.
func slidingWindows(seq string, window int) []string {
	if window <= 0 || window > len(seq) {
		return nil
	}
	out := make([]string, 0, len(seq)-window+1)
	for i := 0; i+window <= len(seq); i++ {
		out = append(out, seq[i:i+window])
	}
	return out
}

// hasExactOrApproxRepeat implements spec.md §4.3.1: a k is rejected for a
// reference window if its k-mers contain an exact duplicate or any pair
// within Hamming distance 3.
func hasExactOrApproxRepeat(seq string, window int) bool {
	kmers := slidingWindows(seq, window)
	return hasExactRepeat(kmers) || hasApproximateRepeat(kmers, maxHammingMismatches)
}

// popcount64 is used by tests to cross-check countDifferingBytes against
// the stdlib bit-counting primitive.
func popcount64(x uint64) int { return bits.OnesCount64(x) }
