package shardrecon

import (
	"math/big"
)

// Rational is an exact fraction over arbitrary-precision integers.
//
// Every observable Rational is in normal form: the denominator is strictly
// positive and shares no divisor greater than one with the numerator. Each
// constructor and arithmetic operation re-establishes this form before the
// value can be seen, which makes Equal a pure structural comparison and the
// canonical String a stable identity. The consensus tally depends on both.
// Operations never mutate their operands; the zero value behaves as 0/1.
type Rational struct {
	num *big.Int
	den *big.Int
}

// NewRational constructs the reduced fraction num/den. It fails with
// ErrDivisionByZero when den is zero. A negative den moves the sign onto the
// numerator, so the stored denominator is always positive.
func NewRational(num, den *big.Int) (Rational, error) {
	if den == nil || den.Sign() == 0 {
		return Rational{}, ErrDivisionByZero.WithDetails("rational constructed with zero denominator")
	}
	return normalized(copyInt(num), copyInt(den)), nil
}

// RationalFromInt creates the rational v/1.
func RationalFromInt(v *big.Int) Rational {
	return Rational{num: copyInt(v), den: big.NewInt(1)}
}

// RationalFromInt64 creates the rational v/1 from a native integer.
func RationalFromInt64(v int64) Rational {
	return Rational{num: big.NewInt(v), den: big.NewInt(1)}
}

// RationalZero returns the rational 0/1.
func RationalZero() Rational {
	return Rational{num: new(big.Int), den: big.NewInt(1)}
}

// RationalOne returns the rational 1/1.
func RationalOne() Rational {
	return Rational{num: big.NewInt(1), den: big.NewInt(1)}
}

// normalized reduces num/den to normal form. It takes ownership of both
// arguments and requires den != 0.
func normalized(num, den *big.Int) Rational {
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	if num.Sign() == 0 {
		return Rational{num: num, den: den.SetInt64(1)}
	}
	// Euclidean gcd on absolute values; den is already positive here.
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), den)
	num.Quo(num, g)
	den.Quo(den, g)
	return Rational{num: num, den: den}
}

// numVal and denVal keep the zero value usable as 0/1. The results must not
// be mutated.
func (r Rational) numVal() *big.Int {
	return valueOrZero(r.num)
}

func (r Rational) denVal() *big.Int {
	if r.den == nil {
		return big.NewInt(1)
	}
	return r.den
}

// Num returns a copy of the numerator.
func (r Rational) Num() *big.Int {
	return copyInt(r.num)
}

// Den returns a copy of the denominator.
func (r Rational) Den() *big.Int {
	return new(big.Int).Set(r.denVal())
}

// Add returns r + other.
func (r Rational) Add(other Rational) Rational {
	a, b := r.numVal(), r.denVal()
	c, d := other.numVal(), other.denVal()
	num := new(big.Int).Mul(a, d)
	num.Add(num, new(big.Int).Mul(c, b))
	den := new(big.Int).Mul(b, d)
	return normalized(num, den)
}

// Sub returns r - other.
func (r Rational) Sub(other Rational) Rational {
	a, b := r.numVal(), r.denVal()
	c, d := other.numVal(), other.denVal()
	num := new(big.Int).Mul(a, d)
	num.Sub(num, new(big.Int).Mul(c, b))
	den := new(big.Int).Mul(b, d)
	return normalized(num, den)
}

// Mul returns r * other.
func (r Rational) Mul(other Rational) Rational {
	num := new(big.Int).Mul(r.numVal(), other.numVal())
	den := new(big.Int).Mul(r.denVal(), other.denVal())
	return normalized(num, den)
}

// Div returns r / other. It fails with ErrDivisionByZero when other is zero.
func (r Rational) Div(other Rational) (Rational, error) {
	if other.IsZero() {
		return Rational{}, ErrDivisionByZero.WithDetails("division by zero rational")
	}
	num := new(big.Int).Mul(r.numVal(), other.denVal())
	den := new(big.Int).Mul(r.denVal(), other.numVal())
	return normalized(num, den), nil
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{
		num: new(big.Int).Neg(r.numVal()),
		den: new(big.Int).Set(r.denVal()),
	}
}

// Equal reports whether two rationals are identical. Both sides are in
// normal form, so structural comparison is exact mathematical equality.
func (r Rational) Equal(other Rational) bool {
	return r.numVal().Cmp(other.numVal()) == 0 && r.denVal().Cmp(other.denVal()) == 0
}

// IsZero reports whether r is zero.
func (r Rational) IsZero() bool {
	return r.numVal().Sign() == 0
}

// Sign returns -1, 0 or +1 according to the sign of r.
func (r Rational) Sign() int {
	return r.numVal().Sign()
}

// AsExactInteger returns the integer value of r and true when the denominator
// is one or divides the numerator evenly, and (nil, false) otherwise. It
// never rounds.
func (r Rational) AsExactInteger() (*big.Int, bool) {
	num, den := r.numVal(), r.denVal()
	if den.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(num), true
	}
	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		return nil, false
	}
	return quo, true
}

// String renders the canonical form: the bare numerator when the denominator
// is one, "num/den" otherwise. Over normal forms this rendering is injective,
// which is what lets the consensus tally use it as a map key.
func (r Rational) String() string {
	num, den := r.numVal(), r.denVal()
	if den.Cmp(big.NewInt(1)) == 0 {
		return num.String()
	}
	return num.String() + "/" + den.String()
}
