// Package main implements the shardrecon CLI.
// This file handles share document inspection and consensus assessment.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quorvus/shardrecon"
)

// inspectCmd validates a share document and reports its corruption tolerance
var inspectCmd = &cobra.Command{
	Use:   "inspect <document.json>",
	Short: "Validate a share document and assess its consensus strength",
	Long: `Validates a JSON share document without reconstructing the secret and
reports how defensible an election over it would be: how many corrupt
shares the majority vote survives, and what the enumeration will cost.

Example:
  shardrecon inspect testdata/quadratic.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	doc, err := shardrecon.LoadTestCase(args[0])
	if err != nil {
		return fmt.Errorf("failed to load share document: %w", err)
	}

	fmt.Printf("Share document: %s\n", args[0])
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("  shares:    %d\n", doc.N)
	fmt.Printf("  threshold: %d\n", doc.K)

	shares, err := doc.Shares()
	if err != nil {
		return fmt.Errorf("invalid share document: %w", err)
	}
	fmt.Printf("  digest:    %s\n", shardrecon.ShareSetFingerprint(shares))

	result := cfg.Validator().ValidateInput(shares, doc.K)
	fmt.Println(strings.Repeat("-", 50))
	if result.Valid {
		fmt.Println("Validation: ok")
	} else {
		fmt.Println("Validation: FAILED")
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}

	assessment := shardrecon.AssessConsensus(doc.N, doc.K)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Consensus rating: %s\n", assessment.OverallRating)
	fmt.Printf("  majority guarantee:    %t\n", assessment.MajorityGuarantee)
	fmt.Printf("  fault tolerance:       %d independently corrupt shares\n", assessment.FaultTolerance)
	fmt.Printf("  adversarial tolerance: %d colluding corrupt shares\n", assessment.AdversarialTolerance)
	fmt.Printf("  enumeration cost:      %s subsets\n", assessment.EnumerationCost)
	for _, rec := range assessment.Recommendations {
		fmt.Printf("  recommendation: %s\n", rec)
	}

	if !result.Valid {
		return fmt.Errorf("share document failed validation")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
