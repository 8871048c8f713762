package shardrecon

import (
	"fmt"
	"math/big"
)

// RedundancyLevel represents how much corruption headroom a share set has
type RedundancyLevel string

const (
	RedundancyLevelLow    RedundancyLevel = "low"
	RedundancyLevelMedium RedundancyLevel = "medium"
	RedundancyLevelHigh   RedundancyLevel = "high"
)

// DefaultMaxEnumeration bounds the subset count before the validator starts
// warning about enumeration cost
const DefaultMaxEnumeration = int64(10_000_000)

// ValidationResult contains the result of share set validation
type ValidationResult struct {
	Valid             bool            `json:"valid"`
	Redundancy        RedundancyLevel `json:"redundancy"`
	MajorityGuarantee bool            `json:"majority_guarantee"`
	Warnings          []string        `json:"warnings,omitempty"`
	Errors            []string        `json:"errors,omitempty"`
	Recommendations   []string        `json:"recommendations,omitempty"`
}

// ShareSetValidator provides validation for reconstruction parameters
type ShareSetValidator struct {
	MinShares      int   `json:"min_shares"`
	MinThreshold   int   `json:"min_threshold"`
	MaxShares      int   `json:"max_shares"`
	MaxThreshold   int   `json:"max_threshold"`
	MaxEnumeration int64 `json:"max_enumeration"` // Subset count above which cost warnings kick in
}

// NewDefaultShareSetValidator creates a validator with practical defaults
func NewDefaultShareSetValidator() *ShareSetValidator {
	return &ShareSetValidator{
		MinShares:      1,
		MinThreshold:   1,
		MaxShares:      256, // Enumeration is the real bound, this catches typos
		MaxThreshold:   256,
		MaxEnumeration: DefaultMaxEnumeration,
	}
}

// ValidateReconstructionParameters validates share count and subset size
func (sv *ShareSetValidator) ValidateReconstructionParameters(shareCount, threshold int) *ValidationResult {
	result := &ValidationResult{
		Valid:           true,
		Redundancy:      RedundancyLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}

	// Basic validation checks
	if threshold <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "threshold must be positive")
	}

	if shareCount <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "share count must be positive")
	}

	if threshold > shareCount {
		result.Valid = false
		result.Errors = append(result.Errors, "threshold cannot exceed share count")
	}

	// Early return if basic validation fails
	if !result.Valid {
		result.Redundancy = RedundancyLevelLow
		return result
	}

	// Configured bounds
	if shareCount < sv.MinShares {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("minimum of %d shares required", sv.MinShares))
	}

	if threshold < sv.MinThreshold {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("minimum threshold of %d required", sv.MinThreshold))
	}

	if shareCount > sv.MaxShares {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("share count exceeds maximum of %d", sv.MaxShares))
	}

	if threshold > sv.MaxThreshold {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("threshold exceeds maximum of %d", sv.MaxThreshold))
	}

	if !result.Valid {
		result.Redundancy = RedundancyLevelLow
		return result
	}

	// Redundancy analysis
	faultTolerance := independentFaultTolerance(shareCount, threshold)
	adversarialTolerance := adversarialFaultTolerance(shareCount, threshold)

	switch {
	case faultTolerance <= 0:
		result.Redundancy = RedundancyLevelLow
	case adversarialTolerance >= 1:
		result.Redundancy = RedundancyLevelHigh
	default:
		result.Redundancy = RedundancyLevelMedium
	}
	result.MajorityGuarantee = adversarialTolerance >= 1

	if threshold == 1 {
		result.Redundancy = RedundancyLevelLow
		result.Warnings = append(result.Warnings, "threshold of 1 makes every share its own candidate - no cross-checking between shares")
	}

	if threshold == shareCount {
		result.Warnings = append(result.Warnings, "threshold equals share count - a single corrupt share poisons the only subset")
		result.Recommendations = append(result.Recommendations, "collect more shares than the threshold so corrupt shares can be out-voted")
	}

	if faultTolerance > 0 && adversarialTolerance < 1 {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%d extra shares guard against isolated corruption only; colluding shares could still win a plurality", shareCount-threshold))
	}

	// Enumeration cost
	subsets := SubsetCount(shareCount, threshold)
	if subsets.Cmp(big.NewInt(sv.MaxEnumeration)) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("enumerating %s subsets may be expensive", subsets))
		result.Recommendations = append(result.Recommendations, "run the reconstructor with multiple workers or reduce the share count")
	}

	return result
}

// ValidateShares validates a share list for duplicates and degenerate points
func ValidateShares(shares []Share) *ValidationResult {
	result := &ValidationResult{
		Valid:           true,
		Redundancy:      RedundancyLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}

	if len(shares) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "share list cannot be empty")
		return result
	}

	// Check for colliding x-coordinates
	seen := make(map[string]*big.Int, len(shares))
	conflicting := []string{}
	identical := []string{}
	for _, share := range shares {
		x := valueOrZero(share.x)
		y := valueOrZero(share.y)
		if prevY, ok := seen[x.String()]; ok {
			if prevY.Cmp(y) == 0 {
				identical = append(identical, x.String())
			} else {
				conflicting = append(conflicting, x.String())
			}
			continue
		}
		seen[x.String()] = y
	}

	if len(identical) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("identical shares listed more than once at x = %v", identical))
	}

	if len(conflicting) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("conflicting shares at x = %v", conflicting))
	}

	// A share at x = 0 asserts the secret directly: every subset containing
	// it interpolates to exactly its y value
	for _, share := range shares {
		if valueOrZero(share.x).Sign() == 0 {
			result.Warnings = append(result.Warnings, "share at x = 0 asserts the secret directly - verify this is intentional")
			break
		}
	}

	return result
}

// ValidateInput validates shares and parameters together
func (sv *ShareSetValidator) ValidateInput(shares []Share, threshold int) *ValidationResult {
	result := &ValidationResult{
		Valid:           true,
		Redundancy:      RedundancyLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}

	shareResult := ValidateShares(shares)
	if !shareResult.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, shareResult.Errors...)
	}
	result.Warnings = append(result.Warnings, shareResult.Warnings...)

	paramResult := sv.ValidateReconstructionParameters(len(shares), threshold)
	if !paramResult.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, paramResult.Errors...)
	}
	result.Warnings = append(result.Warnings, paramResult.Warnings...)
	result.Recommendations = append(result.Recommendations, paramResult.Recommendations...)

	result.Redundancy = minRedundancyLevel(paramResult.Redundancy, shareResult.Redundancy)
	result.MajorityGuarantee = paramResult.MajorityGuarantee

	return result
}

// ValidateReconstructionInput validates shares and parameters together using
// the default limits
func ValidateReconstructionInput(shares []Share, threshold int) *ValidationResult {
	return NewDefaultShareSetValidator().ValidateInput(shares, threshold)
}

// ConsensusAssessment provides a detailed pre-flight assessment of how
// defensible an election over the given parameters would be
type ConsensusAssessment struct {
	OverallRating        RedundancyLevel `json:"overall_rating"`
	MajorityGuarantee    bool            `json:"majority_guarantee"`
	FaultTolerance       int             `json:"fault_tolerance"`       // Independently corrupt shares the election survives
	AdversarialTolerance int             `json:"adversarial_tolerance"` // Colluding corrupt shares the election survives
	EnumerationCost      string          `json:"enumeration_cost"`      // Subset count as a decimal string
	Recommendations      []string        `json:"recommendations"`
}

// AssessConsensus evaluates the corruption tolerance of an election over
// shareCount shares with the given threshold
func AssessConsensus(shareCount, threshold int) *ConsensusAssessment {
	// Input validation
	if shareCount <= 0 || threshold <= 0 {
		return &ConsensusAssessment{
			OverallRating:        RedundancyLevelLow,
			MajorityGuarantee:    false,
			FaultTolerance:       0,
			AdversarialTolerance: 0,
			EnumerationCost:      "0",
			Recommendations:      []string{"share count and threshold must be positive integers"},
		}
	}

	if threshold > shareCount {
		return &ConsensusAssessment{
			OverallRating:        RedundancyLevelLow,
			MajorityGuarantee:    false,
			FaultTolerance:       0,
			AdversarialTolerance: 0,
			EnumerationCost:      "0",
			Recommendations:      []string{"threshold cannot exceed share count"},
		}
	}

	assessment := &ConsensusAssessment{
		FaultTolerance:       independentFaultTolerance(shareCount, threshold),
		AdversarialTolerance: adversarialFaultTolerance(shareCount, threshold),
		EnumerationCost:      SubsetCount(shareCount, threshold).String(),
		Recommendations:      []string{},
	}
	assessment.MajorityGuarantee = assessment.AdversarialTolerance >= 1

	switch {
	case assessment.FaultTolerance <= 0:
		assessment.OverallRating = RedundancyLevelLow
	case assessment.AdversarialTolerance >= 1:
		assessment.OverallRating = RedundancyLevelHigh
	default:
		assessment.OverallRating = RedundancyLevelMedium
	}

	if assessment.FaultTolerance <= 0 {
		assessment.Recommendations = append(assessment.Recommendations,
			"collect more shares than the threshold so the clean subsets can out-vote corruption")
	} else if !assessment.MajorityGuarantee {
		assessment.Recommendations = append(assessment.Recommendations,
			"current redundancy defeats isolated corruption but not colluding shares")
	}

	return assessment
}

// independentFaultTolerance returns the largest number of corrupt shares the
// election survives when the corrupted values do not collude. Each corrupt
// subset then casts a vote for its own distinct value, so the clean value
// wins as soon as at least two clean subsets remain: choose(n-c, k) >= 2,
// which holds exactly up to c = n-k-1.
func independentFaultTolerance(shareCount, threshold int) int {
	tolerance := shareCount - threshold - 1
	if tolerance < 0 {
		return 0
	}
	return tolerance
}

// adversarialFaultTolerance returns the largest c for which the clean
// subsets outnumber everything else even if every subset touching a corrupt
// share voted for one colluding value: 2*choose(n-c, k) > choose(n, k).
func adversarialFaultTolerance(shareCount, threshold int) int {
	total := SubsetCount(shareCount, threshold)
	tolerance := 0
	for c := 1; c <= shareCount-threshold; c++ {
		clean := new(big.Int).Lsh(SubsetCount(shareCount-c, threshold), 1)
		if clean.Cmp(total) <= 0 {
			break
		}
		tolerance = c
	}
	return tolerance
}

// minRedundancyLevel returns the lower of two redundancy levels
func minRedundancyLevel(level1, level2 RedundancyLevel) RedundancyLevel {
	levelRanking := map[RedundancyLevel]int{
		RedundancyLevelLow:    1,
		RedundancyLevelMedium: 2,
		RedundancyLevelHigh:   3,
	}

	rank1, exists1 := levelRanking[level1]
	if !exists1 {
		rank1 = 2
	}

	rank2, exists2 := levelRanking[level2]
	if !exists2 {
		rank2 = 2
	}

	if rank1 <= rank2 {
		return level1
	}
	return level2
}
