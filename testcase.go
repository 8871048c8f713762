package shardrecon

import (
	"encoding/json"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ShareEntry is one encoded share in a test case document: a digit string
// and the numeral base it is written in, both carried as strings.
type ShareEntry struct {
	Base  string `json:"base"`
	Value string `json:"value"`
}

// TestCase mirrors the share document layout: a "keys" header declaring the
// share count n and threshold k, plus one entry per share keyed by the
// share's x coordinate in decimal:
//
//	{
//	  "keys": { "n": 4, "k": 3 },
//	  "1": { "base": "10", "value": "4" },
//	  "2": { "base": "2",  "value": "111" }
//	}
type TestCase struct {
	N       int
	K       int
	Entries map[string]ShareEntry
}

// keysHeader is the wire shape of the "keys" object.
type keysHeader struct {
	N int `json:"n"`
	K int `json:"k"`
}

// NewTestCase creates an empty document with the given declared parameters.
func NewTestCase(n, k int) *TestCase {
	return &TestCase{
		N:       n,
		K:       k,
		Entries: make(map[string]ShareEntry),
	}
}

// UnmarshalJSON decodes the document layout. Every top-level field other
// than "keys" is treated as a share entry.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrMalformedDocument.WithCause(err)
	}

	keysRaw, ok := raw["keys"]
	if !ok {
		return ErrMalformedDocument.WithDetails("missing keys header")
	}
	var header keysHeader
	if err := json.Unmarshal(keysRaw, &header); err != nil {
		return ErrMalformedDocument.WithDetails("invalid keys header").WithCause(err)
	}

	entries := make(map[string]ShareEntry, len(raw)-1)
	for key, value := range raw {
		if key == "keys" {
			continue
		}
		var entry ShareEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return ErrMalformedDocument.
				WithDetails("invalid share entry").
				WithContext("key", key).
				WithCause(err)
		}
		entries[key] = entry
	}

	tc.N = header.N
	tc.K = header.K
	tc.Entries = entries
	return nil
}

// MarshalJSON renders the document layout with the "keys" header alongside
// the share entries.
func (tc TestCase) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(tc.Entries)+1)
	doc["keys"] = keysHeader{N: tc.N, K: tc.K}
	for key, entry := range tc.Entries {
		doc[key] = entry
	}
	return json.Marshal(doc)
}

// ParseTestCase decodes a share document from its JSON bytes.
func ParseTestCase(data []byte) (*TestCase, error) {
	tc := &TestCase{}
	if err := json.Unmarshal(data, tc); err != nil {
		if reconErr, ok := err.(*ReconError); ok {
			return nil, reconErr
		}
		return nil, ErrMalformedDocument.WithCause(err)
	}
	return tc, nil
}

// LoadTestCase reads and decodes a share document from a file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, ErrorCategoryInput, ErrorSeverityHigh,
			"DOCUMENT_READ_FAILED", "cannot read share document").
			WithContext("path", path)
	}
	return ParseTestCase(data)
}

// AddShare encodes y in the given base and records it under x's decimal key.
// x must be non-negative, matching the keys Shares accepts.
func (tc *TestCase) AddShare(x, y *big.Int, base int) error {
	if valueOrZero(x).Sign() < 0 {
		return ErrMalformedDocument.
			WithDetails("share keys are unsigned, x must be non-negative").
			WithContext("x", valueOrZero(x).String())
	}
	value, err := EncodeDigits(y, base)
	if err != nil {
		return err
	}
	if tc.Entries == nil {
		tc.Entries = make(map[string]ShareEntry)
	}
	tc.Entries[valueOrZero(x).String()] = ShareEntry{
		Base:  strconv.Itoa(base),
		Value: value,
	}
	return nil
}

// Shares decodes every entry into its exact integer form and returns the
// shares sorted by ascending x, which fixes the enumeration order
// regardless of document key order.
//
// The declared header is enforced: the threshold must be at least one and
// the entry count must match n. Keys are unsigned decimal integers, so a
// signed key such as "-3" fails with ErrMalformedDocument. Two entries that
// name the same x after canonicalization, such as "1" and "01", fail with
// ErrDuplicateShares.
func (tc *TestCase) Shares() ([]Share, error) {
	if tc.K < 1 {
		return nil, ErrInvalidThreshold.
			WithDetails("declared threshold must be at least 1").
			WithContext("threshold", tc.K)
	}
	if len(tc.Entries) != tc.N {
		return nil, ErrShareCountMismatch.
			WithContext("declared", tc.N).
			WithContext("found", len(tc.Entries))
	}

	shares := make([]Share, 0, len(tc.Entries))
	seen := make(map[string]bool, len(tc.Entries))
	for key, entry := range tc.Entries {
		if strings.HasPrefix(key, "+") || strings.HasPrefix(key, "-") {
			return nil, ErrMalformedDocument.
				WithDetails("share key must be an unsigned decimal integer").
				WithContext("key", key)
		}
		x, ok := new(big.Int).SetString(key, 10)
		if !ok {
			return nil, ErrMalformedDocument.
				WithDetails("share key is not a decimal integer").
				WithContext("key", key)
		}
		if seen[x.String()] {
			return nil, ErrDuplicateShares.WithContext("x", x.String())
		}
		seen[x.String()] = true

		base, err := strconv.Atoi(entry.Base)
		if err != nil {
			return nil, ErrInvalidBase.
				WithDetails("base is not an integer").
				WithContext("base", entry.Base).
				WithContext("x", x.String())
		}
		y, err := DecodeDigits(entry.Value, base)
		if err != nil {
			if reconErr, ok := err.(*ReconError); ok {
				return nil, reconErr.WithContext("x", x.String())
			}
			return nil, err
		}
		shares = append(shares, Share{x: x, y: y})
	}

	sort.Slice(shares, func(i, j int) bool {
		return shares[i].x.Cmp(shares[j].x) < 0
	})
	return shares, nil
}

// DecodeDigits parses an unsigned digit string in the given base into an
// exact integer. The base must lie in [2, 36]; digits beyond 9 use letters
// in either case. Signs, spaces and underscores are not part of the format.
func DecodeDigits(value string, base int) (*big.Int, error) {
	if base < 2 || base > 36 {
		return nil, ErrInvalidBase.WithContext("base", base)
	}
	if value == "" {
		return nil, ErrInvalidDigits.WithDetails("empty digit string")
	}
	if strings.HasPrefix(value, "+") || strings.HasPrefix(value, "-") {
		return nil, ErrInvalidDigits.
			WithDetails("signs are not part of the digit format").
			WithContext("value", value)
	}
	v, ok := new(big.Int).SetString(value, base)
	if !ok {
		return nil, ErrInvalidDigits.
			WithContext("value", value).
			WithContext("base", base)
	}
	return v, nil
}

// EncodeDigits renders a non-negative integer as a digit string in the given
// base, the inverse of DecodeDigits.
func EncodeDigits(v *big.Int, base int) (string, error) {
	if base < 2 || base > 36 {
		return "", ErrInvalidBase.WithContext("base", base)
	}
	v = valueOrZero(v)
	if v.Sign() < 0 {
		return "", ErrInvalidDigits.
			WithDetails("negative values cannot be digit-encoded").
			WithContext("value", v.String())
	}
	return v.Text(base), nil
}
