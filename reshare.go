package shardrecon

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReshareRequest describes a share rotation: the existing shares are
// reconciled into a secret by the usual election, and the secret is split
// into a fresh share set with new parameters.
type ReshareRequest struct {
	// Shares and Threshold describe the existing share set.
	Shares    []Share `json:"-"`
	Threshold int     `json:"threshold"`

	// NewShareCount and NewThreshold parameterize the replacement set.
	NewShareCount int `json:"new_share_count"`
	NewThreshold  int `json:"new_threshold"`

	// Seed, when non-empty, derives the replacement polynomial
	// deterministically. An empty seed samples it from the system
	// randomness.
	Seed []byte `json:"-"`

	// ValidateOnly assesses the rotation without executing it.
	ValidateOnly bool `json:"validate_only"`

	RequestedBy string                 `json:"requested_by,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ReshareResult contains the outcome of a share rotation.
type ReshareResult struct {
	Success bool `json:"success"`

	// Secret is the consensus value elected from the old share set. Unset
	// for validate-only runs.
	Secret *Secret `json:"secret,omitempty"`

	// NewShares is the replacement share set. Empty for validate-only runs.
	NewShares []Share `json:"-"`

	// ValidationResult covers the old share set and the new parameters
	// together; Assessment rates the corruption tolerance of the
	// replacement set.
	ValidationResult *ValidationResult    `json:"validation_result,omitempty"`
	Assessment       *ConsensusAssessment `json:"assessment,omitempty"`

	Duration time.Duration `json:"duration"`

	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Reshare rotates a share set: it elects the secret held by request.Shares
// and splits it into request.NewShareCount fresh shares with threshold
// request.NewThreshold. The rotation inherits the election's corruption
// tolerance, so corrupt old shares lose the vote instead of poisoning the
// replacement set. Only integer secrets can seed a new share set.
func (r *Reconstructor) Reshare(ctx context.Context, request *ReshareRequest) (*ReshareResult, error) {
	if request == nil {
		return nil, fmt.Errorf("reshare request cannot be nil")
	}

	start := time.Now()
	result := &ReshareResult{}

	validator := NewDefaultShareSetValidator()

	validation := validator.ValidateInput(request.Shares, request.Threshold)
	newParams := validator.ValidateReconstructionParameters(request.NewShareCount, request.NewThreshold)
	if !newParams.Valid {
		validation.Valid = false
	}
	validation.Errors = append(validation.Errors, newParams.Errors...)
	validation.Warnings = append(validation.Warnings, newParams.Warnings...)
	validation.Recommendations = append(validation.Recommendations, newParams.Recommendations...)

	result.ValidationResult = validation
	result.Assessment = AssessConsensus(request.NewShareCount, request.NewThreshold)
	result.Warnings = validation.Warnings
	result.Errors = validation.Errors

	if request.ValidateOnly {
		result.Success = validation.Valid
		result.Duration = time.Since(start)
		return result, nil
	}

	if !validation.Valid {
		result.Duration = time.Since(start)
		return result, ErrInvalidReshareRequest.
			WithDetails(strings.Join(validation.Errors, "; ")).
			WithContext("new_share_count", request.NewShareCount).
			WithContext("new_threshold", request.NewThreshold)
	}

	secret, err := r.Reconstruct(ctx, request.Shares, request.Threshold)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result, err
	}
	result.Secret = secret

	if secret.Kind != SecretKindInteger {
		result.Duration = time.Since(start)
		err := ErrNonIntegerSecret.WithContext("value", secret.String())
		result.Errors = append(result.Errors, err.Error())
		return result, err
	}

	var polynomial *Polynomial
	if len(request.Seed) > 0 {
		polynomial, err = NewDeterministicPolynomial(request.Seed, request.NewThreshold-1, secret.Value, nil)
	} else {
		polynomial, err = NewRandomPolynomial(request.NewThreshold-1, secret.Value, nil)
	}
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result, fmt.Errorf("failed to build replacement polynomial: %w", err)
	}

	result.NewShares = polynomial.SampleShares(request.NewShareCount)
	result.Success = true
	result.Duration = time.Since(start)
	return result, nil
}
