// Package main implements the shardrecon CLI.
// This file handles share document generation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorvus/shardrecon"
)

var (
	generateSecret    string
	generateShares    int
	generateThreshold int
	generateBase      int
	generateSeed      string
	generateOut       string
	generateVerify    bool
)

// generateCmd splits a secret into a fresh share document
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Split a secret into a share document",
	Long: `Samples a random polynomial whose constant term is the secret and writes
the shares at x = 1..n as a JSON share document. Any k of the n shares
reconstruct the secret; the digits of each share are encoded in the
requested base.

The secret must be a non-negative decimal integer. With --seed the
polynomial is derived from the seed material instead of the system
randomness, so the same invocation reproduces the same document.

Examples:
  shardrecon generate --secret 123456789 --shares 6 --threshold 3 --out shares.json
  shardrecon generate --secret 42 --shares 5 --threshold 2 --seed "drill 7"`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	secret, ok := new(big.Int).SetString(generateSecret, 10)
	if !ok {
		return fmt.Errorf("secret must be a decimal integer, got %q", generateSecret)
	}
	if secret.Sign() < 0 {
		return fmt.Errorf("secret must be non-negative, got %s", secret)
	}

	result := cfg.Validator().ValidateReconstructionParameters(generateShares, generateThreshold)
	for _, warning := range result.Warnings {
		logger.Warn("Share parameter warning", zap.String("warning", warning))
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("invalid share parameters")
	}

	var (
		polynomial *shardrecon.Polynomial
		err        error
	)
	if generateSeed != "" {
		polynomial, err = shardrecon.NewDeterministicPolynomial([]byte(generateSeed), generateThreshold-1, secret, nil)
	} else {
		polynomial, err = shardrecon.NewRandomPolynomial(generateThreshold-1, secret, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to sample polynomial: %w", err)
	}

	doc := shardrecon.NewTestCase(generateShares, generateThreshold)
	for _, share := range polynomial.SampleShares(generateShares) {
		if err := doc.AddShare(share.X(), share.Y(), generateBase); err != nil {
			return fmt.Errorf("failed to encode share at x = %s: %w", share.X(), err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode share document: %w", err)
	}
	data = append(data, '\n')

	if generateVerify {
		shares, err := doc.Shares()
		if err != nil {
			return fmt.Errorf("generated document failed decoding: %w", err)
		}
		recovered, err := cfg.Reconstructor(logger).Reconstruct(context.Background(), shares, generateThreshold)
		if err != nil {
			return fmt.Errorf("generated document failed reconstruction: %w", err)
		}
		if recovered.Kind != shardrecon.SecretKindInteger || recovered.Value.Cmp(secret) != 0 {
			return fmt.Errorf("generated document reconstructs to %s, want %s", recovered, secret)
		}
		logger.Info("Verified generated document",
			zap.Int64("support", recovered.Support),
			zap.Int64("subsets", recovered.TotalSubsets))
	}

	if generateOut == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(generateOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write share document: %w", err)
	}
	fmt.Printf("Wrote %d shares (threshold %d) to %s\n", generateShares, generateThreshold, generateOut)
	return nil
}

func init() {
	generateCmd.Flags().StringVar(&generateSecret, "secret", "", "Secret to split, as a decimal integer (required)")
	generateCmd.Flags().IntVar(&generateShares, "shares", 5, "Number of shares to produce")
	generateCmd.Flags().IntVar(&generateThreshold, "threshold", 3, "Shares required to reconstruct")
	generateCmd.Flags().IntVar(&generateBase, "base", 10, "Digit base for encoded share values (2-36)")
	generateCmd.Flags().StringVar(&generateSeed, "seed", "", "Derive the polynomial from this seed instead of system randomness")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output file (default: stdout)")
	generateCmd.Flags().BoolVar(&generateVerify, "verify", false, "Reconstruct the generated document and check the secret")
	_ = generateCmd.MarkFlagRequired("secret")

	rootCmd.AddCommand(generateCmd)
}
