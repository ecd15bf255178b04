package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/decay"
)

var (
	flagType     string
	flagQuality  string
	flagSteps    int
	flagInitial  float64
	flagTarget   float64
	flagMaxSteps int
	flagWidth    int
	flagHeight   int
	flagDepth    int
	flagSave     bool
)

// parseType resolves --type, warning (not failing) on unknown values.
func parseType(raw string) decay.ContentType {
	ct, err := decay.ParseContentType(raw)
	if err != nil {
		logger.Warn("unknown content type, using default lambda",
			zap.String("type", raw), zap.Float64("lambda", decay.DefaultLambda))
	}
	return ct
}

func parseQuality(raw string) decay.Quality {
	q, err := decay.ParseQuality(raw)
	if err != nil {
		logger.Warn("unknown quality, using medium target",
			zap.String("quality", raw), zap.Float64("target", decay.Medium.Target()))
	}
	return q
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- types command ---

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List content types and quality targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if jsonOutput {
			types := map[string]float64{}
			for _, ct := range decay.ContentTypes() {
				types[string(ct)] = ct.Lambda()
			}
			qualities := map[string]float64{}
			for _, q := range decay.Qualities() {
				qualities[string(q)] = q.Target()
			}
			return printJSON(out, map[string]any{"contentTypes": types, "qualities": qualities})
		}

		fmt.Fprintln(out, "## Content Types")
		for _, ct := range decay.ContentTypes() {
			fmt.Fprintf(out, "  %-13s λ=%.2f\n", ct, ct.Lambda())
		}
		fmt.Fprintf(out, "  %-13s λ=%.2f\n", "(other)", decay.DefaultLambda)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Quality Targets")
		for _, q := range decay.Qualities() {
			fmt.Fprintf(out, "  %-7s %.0f%%\n", q, q.Target()*100)
		}
		return nil
	},
}

// --- retention command ---

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Retention after a number of conversion steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSteps < 0 {
			return fmt.Errorf("--steps must be >= 0")
		}
		if flagInitial < 0 || flagInitial > 1 {
			return fmt.Errorf("--initial must be in [0, 1]")
		}
		ct := parseType(flagType)
		r := decay.Retention(flagInitial, flagSteps, ct)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"contentType": ct, "lambda": ct.Lambda(), "initial": flagInitial,
				"steps": flagSteps, "retention": r, "retentionPercent": decay.FormatPercent(r),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s after %d steps: %.6f (%s%%)\n", ct, flagSteps, r, decay.FormatPercent(r))
		return nil
	},
}

// --- steps command ---

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Steps until retention falls to a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ct := parseType(flagType)
		steps, err := decay.OptimalSteps(flagTarget, ct)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"contentType": ct, "lambda": ct.Lambda(), "target": flagTarget,
				"steps": steps, "roundedSteps": int(math.Round(steps)),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s reaches %.1f%% retention after %.3f steps (≈%d)\n",
			ct, flagTarget*100, steps, int(math.Round(steps)))
		return nil
	},
}

// --- curve command ---

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the decay curve for a content type",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMaxSteps < 0 {
			return fmt.Errorf("--max must be >= 0")
		}
		ct := parseType(flagType)
		curve := decay.Curve(ct, flagMaxSteps)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), curve)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "## %s (λ=%.2f)\n\n", ct, ct.Lambda())
		for _, p := range curve {
			fmt.Fprintf(out, "  %3d  %6s%%\n", p.Step, p.RetentionPercent)
		}
		return nil
	},
}

// --- optimize command ---

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Recommended step count for a quality level",
	RunE: func(cmd *cobra.Command, args []string) error {
		res := decay.OptimizeForQuality(parseType(flagType), parseQuality(flagQuality))

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s quality (%.0f%% target): %d steps at λ=%.2f\n",
			res.Quality, res.TargetRetention*100, res.Steps, res.Lambda)
		return nil
	},
}

// --- perceptual command ---

var perceptualCmd = &cobra.Command{
	Use:   "perceptual [retention]",
	Short: "Perceived quality score (0-100) for a retention fraction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parse retention: %w", err)
		}
		score := decay.PerceptualQuality(r)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{"retention": r, "perceptualQuality": score})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", score)
		return nil
	},
}

// --- bricks command ---

// checkBuildFlags validates --width, --height and --depth for bricks and report.
func checkBuildFlags() error {
	if flagWidth <= 0 || flagHeight <= 0 {
		return fmt.Errorf("--width and --height must be > 0")
	}
	if flagDepth < 1 {
		return fmt.Errorf("--depth must be >= 1")
	}
	if flagWidth > decay.MaxDimension || flagHeight > decay.MaxDimension || flagDepth > decay.MaxDimension {
		return fmt.Errorf("--width, --height and --depth must be <= %d", decay.MaxDimension)
	}
	return nil
}

var bricksCmd = &cobra.Command{
	Use:   "bricks",
	Short: "Estimate the brick count for a build",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkBuildFlags(); err != nil {
			return err
		}
		est, err := decay.EstimateBricks(flagWidth, flagHeight, flagDepth)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), est)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%dx%dx%d %s: %d studs, ~%d bricks\n",
			est.Width, est.Height, est.Depth, est.Type, est.TotalStuds, est.EstimatedBricks)
		return nil
	},
}

// --- validate command ---

var validateCmd = &cobra.Command{
	Use:   "validate [retention]",
	Short: "Check a retention fraction against the quality thresholds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parse retention: %w", err)
		}
		check := decay.ValidateQuality(r, parseType(flagType))

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), check)
		}
		fmt.Fprintln(cmd.OutOrStdout(), check.Message)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{retentionCmd, stepsCmd, curveCmd, optimizeCmd, validateCmd, reportCmd} {
		c.Flags().StringVarP(&flagType, "type", "t", string(decay.Image), "Content type")
	}
	for _, c := range []*cobra.Command{optimizeCmd, reportCmd} {
		c.Flags().StringVarP(&flagQuality, "quality", "q", string(decay.DefaultQuality), "Quality level (high, medium, low)")
	}
	for _, c := range []*cobra.Command{bricksCmd, reportCmd} {
		c.Flags().IntVar(&flagWidth, "width", 0, "Width in studs")
		c.Flags().IntVar(&flagHeight, "height", 0, "Height in studs")
		c.Flags().IntVar(&flagDepth, "depth", 1, "Depth in studs (1 = mosaic)")
	}

	retentionCmd.Flags().IntVarP(&flagSteps, "steps", "n", 0, "Number of conversion steps")
	retentionCmd.Flags().Float64Var(&flagInitial, "initial", 1.0, "Initial information fraction")
	stepsCmd.Flags().Float64Var(&flagTarget, "target", 0.75, "Target retention in (0, 1]")
	curveCmd.Flags().IntVar(&flagMaxSteps, "max", decay.DefaultCurveSteps, "Last step to sample")
	reportCmd.Flags().BoolVar(&flagSave, "save", false, "Save the report to history")
}
