// Command spvfuzz replays recorded SPIR-V transformation sequences and
// inspects the modules they produce.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gogpu/spvfuzz/fuzz"
)

var rootCmd = &cobra.Command{
	Use:   "spvfuzz",
	Short: "SPIR-V semantics-preserving transformation tool",
	Long:  `spvfuzz replays recorded transformation sequences on SPIR-V modules`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		fuzz.SetLogger(logger)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(disCmd)
	rootCmd.AddCommand(availableCmd)

	rootCmd.PersistentFlags().String("config", "", "path to spvfuzz.toml")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configFromFlags loads the configuration file named by --config, if any,
// and applies the persistent flag overrides.
func configFromFlags(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return cfg, err
	}
	if level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
