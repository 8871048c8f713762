package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorvus/shardrecon"
)

const version = "1.1.0"

var (
	// Global flags
	configPath string
	verbose    bool
	workers    int

	// Shared state built by the root command
	cfg    *shardrecon.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shardrecon",
	Short: "shardrecon - exact consensus reconstruction of threshold-shared secrets",
	Long: `shardrecon reconstructs secrets from threshold share sets using exact
rational arithmetic.

Every k-subset of the provided shares is interpolated at x = 0 and the
candidate values are tallied; the value supported by the most subsets wins
the election. Corrupt shares lose the vote instead of silently corrupting
the result.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = shardrecon.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		logger, err = cfg.Logging.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the shardrecon version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shardrecon %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "shardrecon.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Goroutines sharing the subset enumeration (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
