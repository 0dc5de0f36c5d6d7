package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-motif-service/pkg/config"
	"github.com/gilchrisn/graph-motif-service/pkg/metrics"
	"github.com/gilchrisn/graph-motif-service/pkg/service"
)

var (
	cfg        = config.NewConfig()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "motifs",
	Short: "Network motif extraction and group comparison",
	Long: `motifs thresholds weighted connectivity matrices into directed graphs,
counts their motifs, and compares motif frequency distributions across
subject groups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		if err := cfg.LoadFromFile(configPath); err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Configuration file (yaml, json or toml)")
	flags.String("dataset", "", "Dataset file of weighted connectivity matrices")
	flags.Int("size", 3, "Motif size")
	flags.Float64("degree", 10, "Average out-degree of the thresholded graphs")
	flags.String("oracle", "native", "Census oracle: native or process")
	flags.String("oracle-path", "./Kavosh", "External census program")
	flags.Bool("cache", false, "Enable the result cache")
	flags.Bool("strict", false, "Abort a group on the first oracle failure")
	flags.String("log-level", "info", "Log level")

	bind(rootCmd, "dataset.path", "dataset", true)
	bind(rootCmd, "motif.size", "size", true)
	bind(rootCmd, "motif.degree", "degree", true)
	bind(rootCmd, "oracle.mode", "oracle", true)
	bind(rootCmd, "oracle.path", "oracle-path", true)
	bind(rootCmd, "cache.enabled", "cache", true)
	bind(rootCmd, "aggregate.strict", "strict", true)
	bind(rootCmd, "logging.level", "log-level", true)
}

// bind ties a flag to a configuration key so the flag wins when it is set
func bind(cmd *cobra.Command, key, flag string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	if err := cfg.Viper().BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind %s: %v", flag, err))
	}
}

// setup builds the logger, metrics and motif service from the configuration
func setup() (*service.MotifService, *metrics.Metrics, zerolog.Logger, error) {
	logger := cfg.CreateLogger()
	m := metrics.New()

	svc, err := service.FromConfig(cfg, m, logger)
	if err != nil {
		return nil, nil, logger, err
	}
	return svc, m, logger, nil
}
