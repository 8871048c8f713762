package shardrecon

import (
	"math/big"
)

// InterpolateAtZero evaluates the unique polynomial of degree less than
// len(shares) passing through all given points at x = 0, using the Lagrange
// form over exact rational arithmetic:
//
//	P(0) = sum_i  y_i * prod_{j != i} (-x_j) / (x_i - x_j)
//
// The x coordinates must be pairwise distinct. A repeated x makes some
// denominator (x_i - x_j) vanish and the call fails with ErrDivisionByZero
// rather than guessing which of the conflicting points to trust. An empty
// input is the empty sum and yields zero.
func InterpolateAtZero(shares []Share) (Rational, error) {
	acc := RationalZero()
	for i := range shares {
		basis, err := lagrangeBasisAtZero(shares, i)
		if err != nil {
			return Rational{}, err
		}
		y := RationalFromInt(valueOrZero(shares[i].y))
		acc = acc.Add(basis.Mul(y))
	}
	return acc, nil
}

// lagrangeBasisAtZero computes the i-th Lagrange basis polynomial evaluated
// at zero, prod_{j != i} (-x_j) / (x_i - x_j), as a single reduced fraction.
func lagrangeBasisAtZero(shares []Share, i int) (Rational, error) {
	num := big.NewInt(1)
	den := big.NewInt(1)
	xi := valueOrZero(shares[i].x)
	for j := range shares {
		if j == i {
			continue
		}
		xj := valueOrZero(shares[j].x)
		diff := new(big.Int).Sub(xi, xj)
		if diff.Sign() == 0 {
			return Rational{}, ErrDivisionByZero.
				WithDetails("two evaluation points share an x coordinate").
				WithContext("x", xi.String())
		}
		num.Mul(num, new(big.Int).Neg(xj))
		den.Mul(den, diff)
	}
	return NewRational(num, den)
}
