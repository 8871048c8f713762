package shardrecon

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultCoefficientBound is the exclusive upper bound used for random
// polynomial coefficients when the caller does not supply one.
var DefaultCoefficientBound = new(big.Int).Lsh(big.NewInt(1), 256)

// Polynomial represents an integer polynomial in ascending coefficient order
type Polynomial struct {
	coefficients []*big.Int
}

// NewPolynomial creates a polynomial from its coefficients, a0 first. The
// coefficients are copied.
func NewPolynomial(coefficients []*big.Int) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("polynomial needs at least one coefficient")
	}
	copied := make([]*big.Int, len(coefficients))
	for i, c := range coefficients {
		copied[i] = copyInt(c)
	}
	return &Polynomial{coefficients: copied}, nil
}

// NewRandomPolynomial creates a random polynomial with the given degree and
// constant term. Non-constant coefficients are drawn uniformly below bound,
// and the leading coefficient is forced non-zero so the polynomial has exact
// degree. A nil bound selects DefaultCoefficientBound.
func NewRandomPolynomial(degree int, constantTerm, bound *big.Int) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}
	if bound == nil {
		bound = DefaultCoefficientBound
	}
	if bound.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("coefficient bound must be at least 2")
	}

	coefficients := make([]*big.Int, degree+1)
	coefficients[0] = copyInt(constantTerm) // a0 carries the secret

	for i := 1; i <= degree; i++ {
		coeff, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = coeff
	}

	// Redraw the leading coefficient from [1, bound) so the degree is exact.
	if degree > 0 {
		lead, err := rand.Int(rand.Reader, new(big.Int).Sub(bound, big.NewInt(1)))
		if err != nil {
			return nil, fmt.Errorf("failed to generate leading coefficient: %w", err)
		}
		coefficients[degree] = lead.Add(lead, big.NewInt(1))
	}

	return &Polynomial{coefficients: coefficients}, nil
}

// Evaluate evaluates the polynomial at a given point using Horner's method:
// f(x) = a0 + x(a1 + x(a2 + ...))
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	if len(p.coefficients) == 0 {
		return new(big.Int)
	}
	result := new(big.Int).Set(p.coefficients[len(p.coefficients)-1])
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.coefficients[i])
	}
	return result
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Coefficients returns a copy of the coefficient slice, a0 first.
func (p *Polynomial) Coefficients() []*big.Int {
	out := make([]*big.Int, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// ShareAt evaluates the polynomial at x and packages the point as a Share.
func (p *Polynomial) ShareAt(x *big.Int) Share {
	return NewShare(x, p.Evaluate(x))
}

// SampleShares evaluates the polynomial at x = 1..n and returns the shares.
func (p *Polynomial) SampleShares(n int) []Share {
	shares := make([]Share, 0, n)
	for x := 1; x <= n; x++ {
		shares = append(shares, p.ShareAt(big.NewInt(int64(x))))
	}
	return shares
}
