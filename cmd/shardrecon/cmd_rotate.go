// Package main implements the shardrecon CLI.
// This file handles share document rotation.
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
	rotateShares    int
	rotateThreshold int
	rotateBase      int
	rotateSeed      string
	rotateOut       string
	rotateTimeout   time.Duration
)

// rotateCmd elects the secret of a document and re-splits it
var rotateCmd = &cobra.Command{
	Use:   "rotate <document.json>",
	Short: "Rotate a share document into a fresh share set",
	Long: `Elects the secret held by a share document and splits it into a brand
new share set with the requested parameters. Corrupt shares in the old
document lose the election instead of poisoning the replacement set.

Example:
  shardrecon rotate old_shares.json --shares 7 --threshold 4 --out new_shares.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRotate,
}

func runRotate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rotateTimeout)
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

	request := &shardrecon.ReshareRequest{
		Shares:        shares,
		Threshold:     doc.K,
		NewShareCount: rotateShares,
		NewThreshold:  rotateThreshold,
	}
	if rotateSeed != "" {
		request.Seed = []byte(rotateSeed)
	}

	logger.Info("Rotating share document",
		zap.Int("old_shares", doc.N),
		zap.Int("old_threshold", doc.K),
		zap.Int("new_shares", rotateShares),
		zap.Int("new_threshold", rotateThreshold))

	result, err := cfg.Reconstructor(logger).Reshare(ctx, request)
	if result != nil {
		for _, warning := range result.Warnings {
			logger.Warn("Rotation warning", zap.String("warning", warning))
		}
	}
	if err != nil {
		return fmt.Errorf("rotation failed: %w", err)
	}

	newDoc := shardrecon.NewTestCase(rotateShares, rotateThreshold)
	for _, share := range result.NewShares {
		if err := newDoc.AddShare(share.X(), share.Y(), rotateBase); err != nil {
			return fmt.Errorf("failed to encode share at x = %s: %w", share.X(), err)
		}
	}

	data, err := json.MarshalIndent(newDoc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode share document: %w", err)
	}
	data = append(data, '\n')

	if rotateOut == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(rotateOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write share document: %w", err)
	}
	fmt.Printf("Rotated %d-of-%d document into %d-of-%d at %s\n",
		doc.K, doc.N, rotateThreshold, rotateShares, rotateOut)
	return nil
}

func init() {
	rotateCmd.Flags().IntVar(&rotateShares, "shares", 5, "Number of replacement shares to produce")
	rotateCmd.Flags().IntVar(&rotateThreshold, "threshold", 3, "Shares required to reconstruct the replacement set")
	rotateCmd.Flags().IntVar(&rotateBase, "base", 10, "Digit base for encoded share values (2-36)")
	rotateCmd.Flags().StringVar(&rotateSeed, "seed", "", "Derive the replacement polynomial from this seed")
	rotateCmd.Flags().StringVar(&rotateOut, "out", "", "Output file (default: stdout)")
	rotateCmd.Flags().DurationVar(&rotateTimeout, "timeout", 5*time.Minute, "Rotation timeout")

	rootCmd.AddCommand(rotateCmd)
}
