package cbdg

import (
	"github.com/dgryski/go-farm"
)

// NodeID uniquely identifies a canonical k-mer within one window's graph. It
// need not be stable across process runs (spec.md §9), only within the
// lifetime of a single Graph build, so a fast non-cryptographic hash
// (farm.Hash64, the CityHash-family function the teacher already pulls in
// transitively via grailbio/bio) is the right tool rather than anything
// cryptographically strong.
type NodeID uint64

// hashSeq hashes seq into a NodeID using farmhash, the Go ecosystem's
// CityHash64-equivalent (spec.md §9 names CityHash64 as the reference
// implementation's choice).
func hashSeq(seq string) NodeID {
	return NodeID(farm.Hash64([]byte(seq)))
}
