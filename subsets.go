package shardrecon

import (
	"math/big"
)

// SubsetIterator enumerates the k-element subsets of {0, 1, ..., n-1} in
// lexicographic order, one subset per Next call. The iterator holds no
// references to share data; it produces index tuples that callers resolve
// against their own slice.
//
// A strided iterator visits positions offset, offset+stride, offset+2*stride
// and so on, which lets several workers partition the full enumeration
// without coordination while every subset keeps its global position.
type SubsetIterator struct {
	n      int
	k      int
	offset int
	stride int

	indices  []int
	position int64
	started  bool
	done     bool
}

// NewSubsetIterator returns an iterator over all k-element subsets of
// {0, ..., n-1}. It yields nothing when k < 1 or k > n.
func NewSubsetIterator(n, k int) *SubsetIterator {
	return NewStridedSubsetIterator(n, k, 0, 1)
}

// NewStridedSubsetIterator returns an iterator that starts at the subset with
// lexicographic position offset and then advances stride positions per Next
// call. Offset below zero is treated as zero and stride below one as one, so
// Next always makes progress.
func NewStridedSubsetIterator(n, k, offset, stride int) *SubsetIterator {
	if offset < 0 {
		offset = 0
	}
	if stride < 1 {
		stride = 1
	}
	return &SubsetIterator{
		n:       n,
		k:       k,
		offset:  offset,
		stride:  stride,
		indices: make([]int, max(k, 0)),
	}
}

// Next advances to the iterator's next subset. It returns false when the
// enumeration is exhausted, after which Indices must not be consulted.
func (it *SubsetIterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		if it.k < 1 || it.k > it.n {
			it.done = true
			return false
		}
		for i := range it.indices {
			it.indices[i] = i
		}
		it.position = 0
		return it.skip(it.offset)
	}
	return it.skip(it.stride)
}

// skip advances the iterator count positions forward in lexicographic order.
func (it *SubsetIterator) skip(count int) bool {
	for i := 0; i < count; i++ {
		if !it.advance() {
			it.done = true
			return false
		}
		it.position++
	}
	return true
}

// advance steps indices to the lexicographic successor. It returns false when
// the current subset is the final one {n-k, ..., n-1}.
func (it *SubsetIterator) advance() bool {
	i := it.k - 1
	for ; i >= 0; i-- {
		if it.indices[i] != i+it.n-it.k {
			break
		}
	}
	if i < 0 {
		return false
	}
	it.indices[i]++
	for j := i + 1; j < it.k; j++ {
		it.indices[j] = it.indices[j-1] + 1
	}
	return true
}

// Indices returns a copy of the current subset in increasing order. It is
// only valid after Next has returned true.
func (it *SubsetIterator) Indices() []int {
	out := make([]int, it.k)
	copy(out, it.indices)
	return out
}

// Position returns the zero-based lexicographic position of the current
// subset within the full enumeration.
func (it *SubsetIterator) Position() int64 {
	return it.position
}

// Reset rewinds the iterator to its initial state so the enumeration can be
// replayed.
func (it *SubsetIterator) Reset() {
	it.started = false
	it.done = false
	it.position = 0
}

// SubsetCount returns the number of subsets a SubsetIterator over the same
// parameters visits: C(n, k) when 1 <= k <= n, zero otherwise.
func SubsetCount(n, k int) *big.Int {
	if n < 0 || k < 1 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}
