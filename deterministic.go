package shardrecon

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

const (
	deterministicSeedDomain        = "SHARDRECON_DETERMINISTIC_SEED_v1"
	deterministicCoefficientDomain = "SHARDRECON_DETERMINISTIC_COEFFICIENT_v1"
)

// NewDeterministicPolynomial derives a share polynomial from seed material
// instead of the system randomness. The same seed, degree, and bound always
// yield the same coefficients, so share documents built from it are
// reproducible. The constant term carries the secret, exactly as in
// NewRandomPolynomial.
func NewDeterministicPolynomial(seed []byte, degree int, constantTerm, bound *big.Int) (*Polynomial, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("seed cannot be empty")
	}
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}
	if bound == nil {
		bound = DefaultCoefficientBound
	}
	if bound.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("coefficient bound must be at least 2")
	}

	master := deterministicSeed(seed, degree)

	coefficients := make([]*big.Int, degree+1)
	coefficients[0] = copyInt(constantTerm) // a0 carries the secret

	one := big.NewInt(1)
	for i := 1; i <= degree; i++ {
		coeff, err := coefficientFromSeed(master, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("failed to derive coefficient %d: %w", i, err)
		}
		if i == degree {
			// Map the leading coefficient into [1, bound) so the degree
			// is exact.
			span := new(big.Int).Sub(bound, one)
			coeff.Mod(coeff, span).Add(coeff, one)
		} else {
			coeff.Mod(coeff, bound)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{coefficients: coefficients}, nil
}

// deterministicSeed binds the caller's seed material to the polynomial degree
// so different degrees derive unrelated coefficient streams.
func deterministicSeed(seed []byte, degree int) []byte {
	hasher := sha256.New()

	// Domain separator
	hasher.Write([]byte(deterministicSeedDomain))

	// Caller's seed material, length-prefixed
	seedLen := make([]byte, 4)
	binary.BigEndian.PutUint32(seedLen, uint32(len(seed)))
	hasher.Write(seedLen)
	hasher.Write(seed)

	// Degree (ensures different degrees give different polynomials)
	degreeBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(degreeBytes, uint32(degree))
	hasher.Write(degreeBytes)

	return hasher.Sum(nil)
}

// coefficientFromSeed derives one coefficient from the master seed and its
// index using HKDF.
func coefficientFromSeed(master []byte, index uint32) (*big.Int, error) {
	salt := []byte(deterministicCoefficientDomain)

	indexBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(indexBytes, index)
	info := append([]byte("index:"), indexBytes...)

	// Draw 64 bytes so the value stays effectively uniform after the
	// caller reduces it below the coefficient bound.
	hkdfReader := hkdf.New(sha256.New, master, salt, info)
	coeffBytes := make([]byte, 64)
	if _, err := io.ReadFull(hkdfReader, coeffBytes); err != nil {
		return nil, fmt.Errorf("failed to derive bytes from HKDF: %w", err)
	}

	return new(big.Int).SetBytes(coeffBytes), nil
}
