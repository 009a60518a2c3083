package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	app "github.com/okian/annosim/internal/app"
	"github.com/okian/annosim/internal/config"
	"github.com/okian/annosim/internal/domain/simulation"
	"github.com/okian/annosim/internal/domain/types"
	"github.com/okian/annosim/pkg/logger"
)

var version = "0.1.0-dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by subcommands once the root has loaded config.
type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "annosim",
		Short: "Synthesize annotation team performance datasets",
		Long: `annosim simulates weekly performance for an annotation team: a stable
core roster, a training tax while a new hire onboards, long-term quality
drift and the new hire's learning curve. It writes an individual and a
team table for downstream reporting.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML config file (defaults to $ANNOSIM_CONFIG)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		c.newGenerateCmd(),
		c.newDriftCmd(),
		c.newRankCmd(),
	)
	return rootCmd
}

// setup loads configuration and initializes logging for every subcommand.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "annosim version %s\n", version)
			return err
		},
	}
}

func (c *cli) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Simulate the team and write both performance tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("seed") {
				c.cfg.Seed, _ = flags.GetInt64("seed")
			}
			if flags.Changed("out") {
				c.cfg.Output.Dir, _ = flags.GetString("out")
			}
			if flags.Changed("sqlite") {
				c.cfg.Output.SQLitePath, _ = flags.GetString("sqlite")
			}
			if flags.Changed("metrics") {
				c.cfg.Output.MetricsFile, _ = flags.GetString("metrics")
			}

			svc := app.New(app.WithConfig(c.cfg), app.WithLogger(logger.Get().Named("service")))
			res, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			jsonOut, _ := flags.GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"run_id":   res.RunID,
					"seed":     res.Seed,
					"records":  len(res.Dataset.Records),
					"weeks":    len(res.Dataset.Team),
					"outputs":  res.Outputs,
					"manifest": res.Manifest,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (seed %d): %d records over %d weeks\n",
				res.RunID, res.Seed, len(res.Dataset.Records), len(res.Dataset.Team))
			for _, p := range res.Outputs {
				fmt.Fprintf(out, "  wrote %s\n", p)
			}
			if res.Manifest != "" {
				fmt.Fprintf(out, "  wrote %s\n", res.Manifest)
			}
			return nil
		},
	}
	cmd.Flags().Int64("seed", 0, "Random seed (overrides config)")
	cmd.Flags().String("out", "", "Output directory (overrides config)")
	cmd.Flags().String("sqlite", "", "Also write both tables to this SQLite database")
	cmd.Flags().String("metrics", "", "Write Prometheus metrics in text format to this file")
	return cmd
}

func (c *cli) newDriftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Print the drift accumulated by each role at the final week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := app.New(app.WithConfig(c.cfg)).Drift()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			printDrift(cmd.OutOrStdout(), c.cfg.Simulation.TotalWeeks, rows)
			return nil
		},
	}
}

func (c *cli) newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Simulate and rank members by composite score, weakest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ranking, err := app.New(app.WithConfig(c.cfg)).Rank(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), ranking)
			}
			printRanking(cmd.OutOrStdout(), ranking)
			return nil
		},
	}
}

func printDrift(w io.Writer, weeks int, rows []simulation.DriftSummary) {
	fmt.Fprintf(w, "Drift at week %d\n", weeks)
	fmt.Fprintf(w, "%-10s %6s %10s %10s %10s %8s\n", "ROLE", "WEEKS", "REWORK", "OVERLAP", "AGREEMENT", "RATIO")
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %6d %10.4f %10.4f %10.4f %8.2f\n",
			r.Role, r.ActiveWeeks, r.Drift.ReworkRate, r.Drift.MeanOverlapQuality, r.Drift.AgreementScore, r.ReworkRatio)
	}
}

func printRanking(w io.Writer, ranking []types.Entry) {
	fmt.Fprintf(w, "%-4s %-10s %7s %10s %8s %8s %9s %5s\n", "RANK", "MEMBER", "SCORE", "THROUGHPUT", "REWORK", "OVERLAP", "AGREEMENT", "WEEKS")
	for _, e := range ranking {
		fmt.Fprintf(w, "%-4d %-10s %7.4f %10.1f %8.4f %8.4f %9.4f %5d\n",
			e.Rank, e.Member, e.Score, e.AvgThroughput, e.AvgReworkRate, e.AvgOverlap, e.AvgAgreement, e.Weeks)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
