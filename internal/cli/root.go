package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/config"
	"github.com/lazypower/brickdecay/internal/logging"
)

var (
	cfg    config.Config
	logger = zap.NewNop()

	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "brickdecay",
	Short: "Exponential retention calculator for brick conversions",
	Long: "brickdecay models how much information survives each conversion step, " +
		"recommends step counts for a quality target and estimates brick counts. " +
		"Run 'brickdecay serve' for the JSON API and offline web shell.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(retentionCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(perceptualCmd)
	rootCmd.AddCommand(bricksCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l
	return nil
}
