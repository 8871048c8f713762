package shardrecon

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"
)

func mustRational(t *testing.T, num, den int64) Rational {
	t.Helper()
	r, err := NewRational(big.NewInt(num), big.NewInt(den))
	if err != nil {
		t.Fatalf("NewRational(%d, %d) failed: %v", num, den, err)
	}
	return r
}

func TestNewRationalNormalization(t *testing.T) {
	tests := []struct {
		name    string
		num     int64
		den     int64
		wantNum int64
		wantDen int64
	}{
		{"already reduced", 3, 7, 3, 7},
		{"common factor", 6, 4, 3, 2},
		{"negative denominator", 1, -2, -1, 2},
		{"both negative", -3, -9, 1, 3},
		{"zero numerator", 0, 5, 0, 1},
		{"zero with negative den", 0, -5, 0, 1},
		{"large common factor", 100, 250, 2, 5},
		{"integer value", 8, 2, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustRational(t, tt.num, tt.den)
			if r.Num().Int64() != tt.wantNum || r.Den().Int64() != tt.wantDen {
				t.Errorf("got %s/%s, want %d/%d", r.Num(), r.Den(), tt.wantNum, tt.wantDen)
			}
		})
	}
}

func TestNewRationalZeroDenominator(t *testing.T) {
	_, err := NewRational(big.NewInt(1), big.NewInt(0))
	if err == nil {
		t.Fatal("expected error for zero denominator")
	}
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
	if !IsErrorCategory(err, ErrorCategoryArithmetic) {
		t.Errorf("expected arithmetic category, got %v", err)
	}
}

func TestRationalArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		// 1/2 + 1/3 = 5/6
		got := mustRational(t, 1, 2).Add(mustRational(t, 1, 3))
		if !got.Equal(mustRational(t, 5, 6)) {
			t.Errorf("1/2 + 1/3 = %s, want 5/6", got)
		}
	})

	t.Run("add reduces", func(t *testing.T) {
		// 1/4 + 1/4 = 1/2
		got := mustRational(t, 1, 4).Add(mustRational(t, 1, 4))
		if !got.Equal(mustRational(t, 1, 2)) {
			t.Errorf("1/4 + 1/4 = %s, want 1/2", got)
		}
	})

	t.Run("sub", func(t *testing.T) {
		// 1/2 - 1/3 = 1/6
		got := mustRational(t, 1, 2).Sub(mustRational(t, 1, 3))
		if !got.Equal(mustRational(t, 1, 6)) {
			t.Errorf("1/2 - 1/3 = %s, want 1/6", got)
		}
	})

	t.Run("sub to zero", func(t *testing.T) {
		got := mustRational(t, 7, 3).Sub(mustRational(t, 7, 3))
		if !got.IsZero() {
			t.Errorf("7/3 - 7/3 = %s, want 0", got)
		}
		if got.String() != "0" {
			t.Errorf("canonical zero = %q, want %q", got.String(), "0")
		}
	})

	t.Run("mul", func(t *testing.T) {
		// 2/3 * 9/4 = 3/2
		got := mustRational(t, 2, 3).Mul(mustRational(t, 9, 4))
		if !got.Equal(mustRational(t, 3, 2)) {
			t.Errorf("2/3 * 9/4 = %s, want 3/2", got)
		}
	})

	t.Run("mul by zero", func(t *testing.T) {
		got := mustRational(t, 2, 3).Mul(RationalZero())
		if !got.IsZero() {
			t.Errorf("2/3 * 0 = %s, want 0", got)
		}
	})

	t.Run("div", func(t *testing.T) {
		// (1/2) / (3/4) = 2/3
		got, err := mustRational(t, 1, 2).Div(mustRational(t, 3, 4))
		if err != nil {
			t.Fatalf("div failed: %v", err)
		}
		if !got.Equal(mustRational(t, 2, 3)) {
			t.Errorf("(1/2)/(3/4) = %s, want 2/3", got)
		}
	})

	t.Run("div by negative flips sign", func(t *testing.T) {
		got, err := mustRational(t, 1, 2).Div(mustRational(t, -1, 3))
		if err != nil {
			t.Fatalf("div failed: %v", err)
		}
		if !got.Equal(mustRational(t, -3, 2)) {
			t.Errorf("(1/2)/(-1/3) = %s, want -3/2", got)
		}
		if got.Den().Sign() <= 0 {
			t.Errorf("denominator not positive after division: %s", got.Den())
		}
	})

	t.Run("div by zero", func(t *testing.T) {
		_, err := mustRational(t, 1, 2).Div(RationalZero())
		if !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("expected ErrDivisionByZero, got %v", err)
		}
	})

	t.Run("neg", func(t *testing.T) {
		got := mustRational(t, 3, 5).Neg()
		if !got.Equal(mustRational(t, -3, 5)) {
			t.Errorf("-(3/5) = %s, want -3/5", got)
		}
		if !RationalZero().Neg().IsZero() {
			t.Error("-(0) should be 0")
		}
	})
}

func TestRationalArithmeticLaws(t *testing.T) {
	rng := rand.New(rand.NewChaCha8([32]byte{1}))
	draw := func() Rational {
		num := rng.Int64N(2001) - 1000
		den := rng.Int64N(2000) - 1000
		if den == 0 {
			den = 1
		}
		return mustRational(t, num, den)
	}

	for i := 0; i < 2000; i++ {
		a, b, c := draw(), draw(), draw()

		if x, y := a.Add(b), b.Add(a); !x.Equal(y) {
			t.Fatalf("add not commutative: %s + %s gave %s and %s", a, b, x, y)
		}
		if x, y := a.Mul(b), b.Mul(a); !x.Equal(y) {
			t.Fatalf("mul not commutative: %s * %s gave %s and %s", a, b, x, y)
		}
		if x, y := a.Add(b).Add(c), a.Add(b.Add(c)); !x.Equal(y) {
			t.Fatalf("add not associative over %s, %s, %s: %s vs %s", a, b, c, x, y)
		}
		if x, y := a.Mul(b).Mul(c), a.Mul(b.Mul(c)); !x.Equal(y) {
			t.Fatalf("mul not associative over %s, %s, %s: %s vs %s", a, b, c, x, y)
		}

		// Every result must be observed in normal form.
		for _, r := range []Rational{a.Add(b), a.Sub(c), b.Mul(c)} {
			if r.Den().Sign() <= 0 {
				t.Fatalf("non-positive denominator in %s", r)
			}
			g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(r.Num()), r.Den())
			if g.Cmp(big.NewInt(1)) > 0 {
				t.Fatalf("%s not reduced, gcd %s", r, g)
			}
		}
	}
}

func TestRationalOperandsUnchanged(t *testing.T) {
	a := mustRational(t, 1, 2)
	b := mustRational(t, 1, 3)
	_ = a.Add(b)
	_ = a.Mul(b)
	_ = a.Neg()
	if !a.Equal(mustRational(t, 1, 2)) || !b.Equal(mustRational(t, 1, 3)) {
		t.Errorf("operands mutated: a=%s b=%s", a, b)
	}
}

func TestRationalZeroValue(t *testing.T) {
	var r Rational
	if !r.IsZero() {
		t.Error("zero value should be zero")
	}
	if r.String() != "0" {
		t.Errorf("zero value String() = %q, want %q", r.String(), "0")
	}
	sum := r.Add(mustRational(t, 2, 3))
	if !sum.Equal(mustRational(t, 2, 3)) {
		t.Errorf("0 + 2/3 = %s, want 2/3", sum)
	}
}

func TestRationalAsExactInteger(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		v, ok := mustRational(t, 42, 1).AsExactInteger()
		if !ok || v.Int64() != 42 {
			t.Errorf("42/1 as integer = (%v, %v), want (42, true)", v, ok)
		}
	})

	t.Run("reduces to integer", func(t *testing.T) {
		v, ok := mustRational(t, 12, 4).AsExactInteger()
		if !ok || v.Int64() != 3 {
			t.Errorf("12/4 as integer = (%v, %v), want (3, true)", v, ok)
		}
	})

	t.Run("negative integer", func(t *testing.T) {
		v, ok := mustRational(t, -10, 2).AsExactInteger()
		if !ok || v.Int64() != -5 {
			t.Errorf("-10/2 as integer = (%v, %v), want (-5, true)", v, ok)
		}
	})

	t.Run("proper fraction", func(t *testing.T) {
		if _, ok := mustRational(t, 1, 2).AsExactInteger(); ok {
			t.Error("1/2 should not convert to an integer")
		}
	})

	t.Run("zero", func(t *testing.T) {
		v, ok := RationalZero().AsExactInteger()
		if !ok || v.Sign() != 0 {
			t.Errorf("0 as integer = (%v, %v), want (0, true)", v, ok)
		}
	})
}

func TestRationalAsExactIntegerGrid(t *testing.T) {
	// Every signed (n, d) pair in a small window: integral iff d divides n.
	for n := int64(-15); n <= 15; n++ {
		for d := int64(-15); d <= 15; d++ {
			if d == 0 {
				continue
			}
			v, ok := mustRational(t, n, d).AsExactInteger()
			if n%d == 0 {
				if !ok || v.Int64() != n/d {
					t.Errorf("(%d/%d) as integer = (%v, %v), want (%d, true)", n, d, v, ok, n/d)
				}
			} else if ok {
				t.Errorf("(%d/%d) converted to %v, want non-integral", n, d, v)
			}
		}
	}
}

func TestRationalString(t *testing.T) {
	tests := []struct {
		num  int64
		den  int64
		want string
	}{
		{7, 1, "7"},
		{-7, 1, "-7"},
		{1, 2, "1/2"},
		{-1, 2, "-1/2"},
		{6, 4, "3/2"},
		{0, 9, "0"},
	}
	for _, tt := range tests {
		got := mustRational(t, tt.num, tt.den).String()
		if got != tt.want {
			t.Errorf("(%d/%d).String() = %q, want %q", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestRationalEqualAcrossForms(t *testing.T) {
	a := mustRational(t, 2, 4)
	b := mustRational(t, 1, 2)
	c := mustRational(t, 3, 6)
	if !a.Equal(b) || !b.Equal(c) {
		t.Error("equal values in different input forms must compare equal")
	}
	if a.String() != b.String() || b.String() != c.String() {
		t.Error("canonical strings of equal values must be identical")
	}
}

func TestRationalLargeValues(t *testing.T) {
	// 2^200 / 2^100 reduces to 2^100.
	num := new(big.Int).Lsh(big.NewInt(1), 200)
	den := new(big.Int).Lsh(big.NewInt(1), 100)
	r, err := NewRational(num, den)
	if err != nil {
		t.Fatalf("NewRational failed: %v", err)
	}
	want := new(big.Int).Lsh(big.NewInt(1), 100)
	v, ok := r.AsExactInteger()
	if !ok || v.Cmp(want) != 0 {
		t.Errorf("2^200/2^100 = %s, want 2^100", r)
	}
}
