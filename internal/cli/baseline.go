package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/diffgate/internal/baseline"
	"github.com/dshills/diffgate/internal/config"
	"github.com/dshills/diffgate/internal/engine"
	"github.com/dshills/diffgate/internal/gitctx"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the finding baseline",
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Record current staged findings as the accepted baseline",
	Long:  "Analyze staged changes and save every finding fingerprint. Subsequent checks suppress those findings until the baseline is cleared.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		diff, err := gitctx.Staged(buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		rules, err := engine.LoadRules(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
		boundaries, err := engine.LoadBoundaries(cfg.BoundariesFile)
		if err != nil {
			return fmt.Errorf("loading boundaries: %w", err)
		}

		result := engine.Analyze(diff.Diff, rules, boundaries)
		result.Findings = engine.DeduplicateFindings(result.Findings)

		store, err := baseline.New(true, cfg.Baseline.Dir)
		if err != nil {
			return fmt.Errorf("opening baseline: %w", err)
		}
		if err := store.Save(diff.Repo.Root, result.Findings); err != nil {
			return fmt.Errorf("saving baseline: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Baseline saved: %d finding(s) recorded.\n", len(result.Findings))
		return nil
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show baseline statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		store, err := baseline.New(cfg.Baseline.Enabled, cfg.Baseline.Dir)
		if err != nil {
			return fmt.Errorf("opening baseline: %w", err)
		}
		if !store.Enabled() {
			fmt.Fprintln(os.Stdout, "Baseline is disabled.")
			return nil
		}
		meta, err := gitctx.GetRepoMeta()
		if err != nil {
			return err
		}
		stats, err := store.GetStats(meta.Root)
		if err != nil {
			return fmt.Errorf("reading baseline stats: %w", err)
		}
		if stats.SavedAt.IsZero() && stats.Fingerprints == 0 {
			fmt.Fprintln(os.Stdout, "No baseline saved for this repository.")
			return nil
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var baselineClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved baseline for this repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		store, err := baseline.New(true, cfg.Baseline.Dir)
		if err != nil {
			return fmt.Errorf("opening baseline: %w", err)
		}
		meta, err := gitctx.GetRepoMeta()
		if err != nil {
			return err
		}
		if err := store.Clear(meta.Root); err != nil {
			return fmt.Errorf("clearing baseline: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Baseline cleared.")
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineClearCmd)

	addCheckFlags(baselineSaveCmd)
}
