// Package shardrecon reconstructs a hidden constant from k-of-n shares of a
// secret polynomial using exact Lagrange interpolation at x = 0.
//
// The share set may carry more than the minimum k shares, and some of them may
// be corrupted or adversarial. Rather than trusting any single selection of k
// shares, the reconstructor interpolates every size-k subset and elects the
// value produced by the largest block of agreeing subsets. All arithmetic is
// exact: shares are arbitrary-precision integers and every intermediate value
// is a reduced rational, so the elected secret is bit-exact regardless of
// coordinate magnitude.
package shardrecon

import (
	"fmt"
	"math/big"
)

// Share represents one (x, y) point believed to lie on the secret polynomial.
// Shares are immutable once constructed; accessors return copies.
type Share struct {
	x *big.Int
	y *big.Int
}

// NewShare creates a share from the evaluation point x and the share value y.
// Both values are copied.
func NewShare(x, y *big.Int) Share {
	return Share{
		x: copyInt(x),
		y: copyInt(y),
	}
}

// NewShareInt64 creates a share from native integers.
func NewShareInt64(x, y int64) Share {
	return Share{
		x: big.NewInt(x),
		y: big.NewInt(y),
	}
}

// X returns a copy of the share's evaluation point.
func (s Share) X() *big.Int {
	return copyInt(s.x)
}

// Y returns a copy of the share's value.
func (s Share) Y() *big.Int {
	return copyInt(s.y)
}

// String renders the share as "(x, y)".
func (s Share) String() string {
	return fmt.Sprintf("(%s, %s)", valueOrZero(s.x), valueOrZero(s.y))
}

// SecretKind distinguishes the two output shapes of a reconstruction.
type SecretKind string

const (
	SecretKindInteger  SecretKind = "integer"
	SecretKindRational SecretKind = "rational"
)

// Secret is the final output of a reconstruction run: the elected value at
// x = 0, collapsed to an exact integer when the winning rational divides
// evenly, together with the representative subset that produced it so the
// trusted shares can be audited.
type Secret struct {
	Kind SecretKind `json:"kind"`

	// Value is set when Kind is SecretKindInteger.
	Value *big.Int `json:"value,omitempty"`

	// Numerator and Denominator are set when Kind is SecretKindRational.
	Numerator   *big.Int `json:"numerator,omitempty"`
	Denominator *big.Int `json:"denominator,omitempty"`

	// SubsetIndices are the positions, within the input share sequence, of
	// the first subset that produced the winning value. SubsetXValues carries
	// the corresponding evaluation points.
	SubsetIndices []int      `json:"subset_indices"`
	SubsetXValues []*big.Int `json:"subset_x_values"`

	// Support is the number of subsets that agreed on the winning value.
	Support int64 `json:"support"`

	// TotalSubsets counts every enumerated subset; SkippedSubsets counts the
	// ones excluded because interpolation failed on them.
	TotalSubsets   int64 `json:"total_subsets"`
	SkippedSubsets int64 `json:"skipped_subsets"`
}

// String renders the secret value: the plain integer for integer results,
// "numerator/denominator" otherwise.
func (s *Secret) String() string {
	if s.Kind == SecretKindInteger {
		return valueOrZero(s.Value).String()
	}
	return fmt.Sprintf("%s/%s", valueOrZero(s.Numerator), valueOrZero(s.Denominator))
}

// copyInt returns a fresh copy of v, treating nil as zero.
func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// valueOrZero returns v, or a zero big.Int when v is nil. The result must not
// be mutated.
func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
