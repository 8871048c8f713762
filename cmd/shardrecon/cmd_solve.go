// Package main implements the shardrecon CLI.
// This file handles secret reconstruction from share documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorvus/shardrecon"
)

var (
	solveJSON    bool
	solveTimeout time.Duration
)

// solveCmd reconstructs the secret held by a share document
var solveCmd = &cobra.Command{
	Use:   "solve <document.json>",
	Short: "Reconstruct the secret from a share document",
	Long: `Loads a JSON share document, enumerates every k-subset of its shares,
and reports the value the subsets agree on.

Examples:
  shardrecon solve testdata/quadratic.json
  shardrecon solve --workers 8 --json shares.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), solveTimeout)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	doc, err := shardrecon.LoadTestCase(args[0])
	if err != nil {
		return fmt.Errorf("failed to load share document: %w", err)
	}

	shares, err := doc.Shares()
	if err != nil {
		return fmt.Errorf("invalid share document: %w", err)
	}

	result := cfg.Validator().ValidateInput(shares, doc.K)
	for _, warning := range result.Warnings {
		logger.Warn("Share set warning", zap.String("warning", warning))
	}
	if !result.Valid {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("share document failed validation")
	}

	logger.Info("Reconstructing secret",
		zap.Int("shares", len(shares)),
		zap.Int("threshold", doc.K),
		zap.Int("workers", cfg.Workers))

	secret, err := cfg.Reconstructor(logger).Reconstruct(ctx, shares, doc.K)
	if err != nil {
		return fmt.Errorf("reconstruction failed: %w", err)
	}

	if solveJSON {
		data, err := json.MarshalIndent(secret, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printSecret(secret)
	return nil
}

func printSecret(secret *shardrecon.Secret) {
	fmt.Printf("Secret: %s\n", secret)
	fmt.Printf("  kind:           %s\n", secret.Kind)
	fmt.Printf("  support:        %d of %d subsets\n", secret.Support, secret.TotalSubsets)
	if secret.SkippedSubsets > 0 {
		fmt.Printf("  skipped:        %d subsets\n", secret.SkippedSubsets)
	}
	fmt.Printf("  winning subset: shares %v at x = %v\n", secret.SubsetIndices, secret.SubsetXValues)
}

func init() {
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "Emit the result as JSON")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 5*time.Minute, "Reconstruction timeout")

	rootCmd.AddCommand(solveCmd)
}
