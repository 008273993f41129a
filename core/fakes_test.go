package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type fakeReference struct {
	chroms []ChromInfo
	seqs   map[int]string
}

func (f *fakeReference) ListChroms() []ChromInfo { return f.chroms }

func (f *fakeReference) ParseRegion(spec string) (Region, error) {
	parts := strings.SplitN(spec, ":", 2)
	var chrom ChromInfo
	found := false
	for _, c := range f.chroms {
		if c.Name == parts[0] {
			chrom, found = c, true
			break
		}
	}
	if !found {
		return Region{}, fmt.Errorf("fakeReference: unknown chrom %q", parts[0])
	}
	if len(parts) == 1 {
		return Region{ChromIndex: chrom.Index, ChromName: chrom.Name, Start1: 1, End1: chrom.Length}, nil
	}
	rangeParts := strings.SplitN(parts[1], "-", 2)
	start, err := strconv.Atoi(rangeParts[0])
	if err != nil {
		return Region{}, err
	}
	end := chrom.Length
	if len(rangeParts) == 2 && rangeParts[1] != "" {
		end, err = strconv.Atoi(rangeParts[1])
		if err != nil {
			return Region{}, err
		}
	}
	return Region{ChromIndex: chrom.Index, ChromName: chrom.Name, Start1: start, End1: end}, nil
}

func (f *fakeReference) Fetch(chromIndex, start1, end1 int) (string, error) {
	seq, ok := f.seqs[chromIndex]
	if !ok {
		return "", fmt.Errorf("fakeReference: no sequence for chrom %d", chromIndex)
	}
	if start1 < 1 || end1 > len(seq) {
		return "", fmt.Errorf("fakeReference: range %d-%d out of bounds", start1, end1)
	}
	return seq[start1-1 : end1], nil
}

type fakeAlignmentStream struct {
	alignments []Alignment
}

func (f *fakeAlignmentStream) Fetch(ctx context.Context, region Region) (AlignmentIterator, error) {
	var out []Alignment
	for _, a := range f.alignments {
		if a.ChromIndex == region.ChromIndex && a.Start0 < region.End1 && a.End0 >= region.Start1-1 {
			out = append(out, a)
		}
	}
	return &fakeIterator{alignments: out}, nil
}

func (f *fakeAlignmentStream) FetchMulti(ctx context.Context, coords []MateCoord) (AlignmentIterator, error) {
	var out []Alignment
	for _, a := range f.alignments {
		for _, c := range coords {
			if a.ChromIndex == c.ChromIndex && a.Start0 == c.Pos0 {
				out = append(out, a)
			}
		}
	}
	return &fakeIterator{alignments: out}, nil
}

type fakeIterator struct {
	alignments []Alignment
	idx        int
}

func (it *fakeIterator) Next() bool {
	if it.idx >= len(it.alignments) {
		return false
	}
	it.idx++
	return true
}

func (it *fakeIterator) Alignment() Alignment { return it.alignments[it.idx-1] }
func (it *fakeIterator) Close() error         { return nil }
