package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/decay"
	"github.com/lazypower/brickdecay/internal/store"
)

// openDB opens the report history for CLI commands.
func openDB() (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}

// --- report command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Full optimization report for a content type, quality and build size",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := checkBuildFlags(); err != nil {
		return err
	}

	report, err := decay.GenerateReport(decay.ReportParams{
		ContentType: parseType(flagType),
		Quality:     parseQuality(flagQuality),
		Width:       flagWidth,
		Height:      flagHeight,
		Depth:       flagDepth,
	})
	if err != nil {
		return err
	}

	if flagSave {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if err := db.SaveReport(&report); err != nil {
			return err
		}
		logger.Info("report saved", zap.String("id", report.ID), zap.String("db", db.Path))
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), &report)
	return nil
}

func printReport(out io.Writer, r *decay.Report) {
	if r.ID != "" {
		fmt.Fprintf(out, "## Report %s\n\n", r.ID)
	} else {
		fmt.Fprintln(out, "## Report")
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  content type:  %s (λ=%.2f)\n", r.ContentType, r.Optimization.Lambda)
	fmt.Fprintf(out, "  quality:       %s (%.0f%% target)\n", r.Quality, r.Optimization.TargetRetention*100)
	fmt.Fprintf(out, "  steps:         %d\n", r.Optimization.Steps)
	fmt.Fprintf(out, "  retention:     %s%%\n", r.RetentionPercent)
	fmt.Fprintf(out, "  perceptual:    %d/100\n", r.PerceptualQuality)
	fmt.Fprintf(out, "  bricks:        ~%d (%d studs, %s)\n", r.Bricks.EstimatedBricks, r.Bricks.TotalStuds, r.Bricks.Type)
	fmt.Fprintf(out, "  verdict:       %s\n", r.Validation.Message)
	fmt.Fprintf(out, "  created:       %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
}

// --- history command ---

var (
	historyLimit int
	historyType  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved reports",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		reports, err := db.ListReports(historyLimit, historyType)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if reports == nil {
				reports = []store.ReportSummary{}
			}
			return printJSON(out, reports)
		}
		if len(reports) == 0 {
			fmt.Fprintln(out, "No saved reports. Run 'brickdecay report --save' first.")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(out, "%s  %s  %-12s %-6s %2d steps  %5.1f%%  ~%d bricks\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.ContentType, r.Quality,
				r.Steps, r.Retention*100, r.EstimatedBricks)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		report, err := db.GetReport(args[0])
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("report %s not found", args[0])
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		deleted, err := db.DeleteReport(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("report %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of reports")
	historyListCmd.Flags().StringVarP(&historyType, "type", "t", "", "Filter by content type")
}
