package cbdg

import "strings"

// cord is an append/prepend-cheap rope of sequence fragments. Node
// compression (Graph.compressNode) repeatedly appends or prepends a
// neighbour's unique suffix/prefix to a node's sequence; doing that with a
// plain string would mean an O(n) copy on every merge. cord defers the copy
// until the final sequence is actually needed (haplotype output, POA input),
// per the DESIGN NOTES in spec.md §9.
type cord struct {
	chunks []string
	length int
}

func newCord(s string) cord {
	return cord{chunks: []string{s}, length: len(s)}
}

func (c *cord) append(s string) {
	if s == "" {
		return
	}
	c.chunks = append(c.chunks, s)
	c.length += len(s)
}

func (c *cord) prepend(s string) {
	if s == "" {
		return
	}
	c.chunks = append([]string{s}, c.chunks...)
	c.length += len(s)
}

func (c *cord) Len() int { return c.length }

// String materializes the cord into a single contiguous string.
func (c *cord) String() string {
	if len(c.chunks) == 1 {
		return c.chunks[0]
	}
	var b strings.Builder
	b.Grow(c.length)
	for _, chunk := range c.chunks {
		b.WriteString(chunk)
	}
	return b.String()
}

func (c *cord) clone() cord {
	chunks := make([]string, len(c.chunks))
	copy(chunks, c.chunks)
	return cord{chunks: chunks, length: c.length}
}
