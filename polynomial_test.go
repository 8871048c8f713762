package shardrecon

import (
	"context"
	"math/big"
	"testing"
)

func coeffs(values ...int64) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestPolynomialEvaluate(t *testing.T) {
	// f(x) = 3 + 2x + x^2
	p, err := NewPolynomial(coeffs(3, 2, 1))
	if err != nil {
		t.Fatalf("NewPolynomial failed: %v", err)
	}

	tests := []struct {
		x    int64
		want int64
	}{
		{0, 3},
		{1, 6},
		{2, 11},
		{3, 18},
		{-1, 2},
		{-3, 6},
	}
	for _, tt := range tests {
		if got := p.Evaluate(big.NewInt(tt.x)); got.Int64() != tt.want {
			t.Errorf("f(%d) = %s, want %d", tt.x, got, tt.want)
		}
	}
	if p.Degree() != 2 {
		t.Errorf("degree = %d, want 2", p.Degree())
	}
}

func TestNewPolynomialEmpty(t *testing.T) {
	if _, err := NewPolynomial(nil); err == nil {
		t.Error("expected error for empty coefficients")
	}
}

func TestPolynomialCoefficientsAreCopies(t *testing.T) {
	input := coeffs(7, 5)
	p, err := NewPolynomial(input)
	if err != nil {
		t.Fatalf("NewPolynomial failed: %v", err)
	}

	input[0].SetInt64(999)
	if got := p.Evaluate(big.NewInt(0)); got.Int64() != 7 {
		t.Errorf("constructor aliased caller memory: f(0) = %s", got)
	}

	returned := p.Coefficients()
	returned[0].SetInt64(-1)
	if got := p.Evaluate(big.NewInt(0)); got.Int64() != 7 {
		t.Errorf("accessor aliased internal memory: f(0) = %s", got)
	}
}

func TestNewRandomPolynomial(t *testing.T) {
	secret := big.NewInt(42)
	bound := big.NewInt(1000)

	p, err := NewRandomPolynomial(3, secret, bound)
	if err != nil {
		t.Fatalf("NewRandomPolynomial failed: %v", err)
	}
	if p.Degree() != 3 {
		t.Errorf("degree = %d, want 3", p.Degree())
	}
	if got := p.Evaluate(big.NewInt(0)); got.Cmp(secret) != 0 {
		t.Errorf("constant term = %s, want 42", got)
	}

	cs := p.Coefficients()
	if cs[3].Sign() == 0 {
		t.Error("leading coefficient must be non-zero")
	}
	for i, c := range cs[1:] {
		if c.Sign() < 0 || c.Cmp(bound) >= 0 {
			t.Errorf("coefficient %d = %s outside [0, %s)", i+1, c, bound)
		}
	}
}

func TestNewRandomPolynomialValidation(t *testing.T) {
	if _, err := NewRandomPolynomial(-1, big.NewInt(1), nil); err == nil {
		t.Error("expected error for negative degree")
	}
	if _, err := NewRandomPolynomial(2, big.NewInt(1), big.NewInt(1)); err == nil {
		t.Error("expected error for unusable bound")
	}
}

func TestNewRandomPolynomialDegreeZero(t *testing.T) {
	p, err := NewRandomPolynomial(0, big.NewInt(9), nil)
	if err != nil {
		t.Fatalf("NewRandomPolynomial failed: %v", err)
	}
	if p.Degree() != 0 || p.Evaluate(big.NewInt(123)).Int64() != 9 {
		t.Errorf("degree-zero polynomial should be constant 9")
	}
}

func TestSampleShares(t *testing.T) {
	p, err := NewPolynomial(coeffs(5, -2))
	if err != nil {
		t.Fatalf("NewPolynomial failed: %v", err)
	}
	shares := p.SampleShares(3)
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	for i, share := range shares {
		wantX := int64(i + 1)
		if share.X().Int64() != wantX {
			t.Errorf("share %d at x = %s, want %d", i, share.X(), wantX)
		}
		if share.Y().Int64() != 5-2*wantX {
			t.Errorf("share %d value = %s, want %d", i, share.Y(), 5-2*wantX)
		}
	}
}

func TestRandomPolynomialRoundTrip(t *testing.T) {
	// Shares generated from a random polynomial must reconstruct its
	// constant term, including through the consensus path.
	secret, ok := new(big.Int).SetString("123456789123456789123456789", 10)
	if !ok {
		t.Fatal("bad literal")
	}

	p, err := NewRandomPolynomial(2, secret, nil)
	if err != nil {
		t.Fatalf("NewRandomPolynomial failed: %v", err)
	}

	shares := p.SampleShares(6)
	result, err := ReconstructSecret(context.Background(), shares, 3)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	if result.Kind != SecretKindInteger || result.Value.Cmp(secret) != 0 {
		t.Errorf("reconstructed %s, want %s", result, secret)
	}
	if result.Support != result.TotalSubsets {
		t.Errorf("clean shares should agree everywhere: support %d of %d",
			result.Support, result.TotalSubsets)
	}
}
