package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/diffgate/internal/baseline"
	"github.com/dshills/diffgate/internal/config"
	"github.com/dshills/diffgate/internal/engine"
	"github.com/dshills/diffgate/internal/gitctx"
	"github.com/dshills/diffgate/internal/output"
	"github.com/dshills/diffgate/internal/redact"
)

// Shared check flags
var (
	flagRules       string
	flagBoundaries  string
	flagFormat      string
	flagOut         string
	flagFailOn      string
	flagMaxFindings int
	flagExclude     string
	flagNoBaseline  bool
)

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (JSON or YAML)")
	cmd.Flags().StringVar(&flagBoundaries, "boundaries", "", "Boundaries file path (JSON or YAML)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, minor, major, critical)")
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum number of findings")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().BoolVar(&flagNoBaseline, "no-baseline", false, "Ignore the saved baseline for this run")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagBoundaries != "" {
		m["boundariesFile"] = flagBoundaries
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = fmt.Sprintf("%d", flagMaxFindings)
	}
	return m
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		ContextLines: cfg.ContextLines,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Exclude:      cfg.Exclude,
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func runCheck(diff gitctx.DiffResult, cfg config.Config, gitMs int64) {
	start := time.Now()

	rules, err := engine.LoadRules(cfg.RulesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	boundaries, err := engine.LoadBoundaries(cfg.BoundariesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading boundaries: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	slog.Debug("analyzing diff",
		"files", len(diff.Files),
		"bytes", len(diff.Diff),
		"rulesFile", cfg.RulesFile,
		"boundariesFile", cfg.BoundariesFile)

	analyzeStart := time.Now()
	result := engine.Analyze(diff.Diff, rules, boundaries)
	analyzeMs := time.Since(analyzeStart).Milliseconds()

	result.Findings = engine.DeduplicateFindings(result.Findings)
	engine.SortFindings(result.Findings)

	// Baseline suppression
	if cfg.Baseline.Enabled && !flagNoBaseline {
		store, err := baseline.New(true, cfg.Baseline.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening baseline: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		set, err := store.Load(diff.Repo.Root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading baseline: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		if len(set) > 0 {
			before := len(result.Findings)
			result.Findings = baseline.Filter(result.Findings, set)
			slog.Debug("baseline applied", "suppressed", before-len(result.Findings))
		}
	}

	if cfg.MaxFindings > 0 && len(result.Findings) > cfg.MaxFindings {
		result.Findings = result.Findings[:cfg.MaxFindings]
	}

	result.LLMTasks = redact.Tasks(result.LLMTasks, cfg.Redact.Secrets, cfg.Redact.Paths)

	report := engine.BuildReport(result,
		engine.RepoInfo{Root: diff.Repo.Root, Head: diff.Repo.Head, Branch: diff.Repo.Branch},
		engine.InputInfo{
			Mode:           diff.Mode,
			Range:          diff.Range,
			RulesFile:      cfg.RulesFile,
			BoundariesFile: cfg.BoundariesFile,
		},
		engine.Timing{
			GitMs:     gitMs,
			AnalyzeMs: analyzeMs,
			TotalMs:   gitMs + time.Since(start).Milliseconds(),
		})

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	// Check fail-on threshold
	if cfg.FailOn != "none" && cfg.FailOn != "" {
		for _, f := range report.Findings {
			if engine.MeetsThreshold(f.Severity, cfg.FailOn) {
				exitCode = ExitFindings
				return
			}
		}
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Analyze code changes",
	Long:  "Analyze code changes against the configured rules and boundaries. Use subcommands to specify what to check.",
}

var checkUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Check unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		gitStart := time.Now()
		diff, err := gitctx.Unstaged(buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runCheck(diff, cfg, time.Since(gitStart).Milliseconds())
		return nil
	},
}

var checkStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Check staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		gitStart := time.Now()
		diff, err := gitctx.Staged(buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runCheck(diff, cfg, time.Since(gitStart).Milliseconds())
		return nil
	},
}

var checkCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Check a specific commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		gitStart := time.Now()
		diff, err := gitctx.Commit(args[0], buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runCheck(diff, cfg, time.Since(gitStart).Milliseconds())
		return nil
	},
}

var flagMergeBase bool

var checkRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Check a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		gitStart := time.Now()
		diff, err := gitctx.Range(args[0], flagMergeBase, buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runCheck(diff, cfg, time.Since(gitStart).Milliseconds())
		return nil
	},
}

var checkFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Check a pre-captured unified diff file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		var data []byte
		if args[0] == "-" {
			data, err = readAllStdin()
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading diff: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		diff, err := gitctx.FromFile(string(data), buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runCheck(diff, cfg, 0)
		return nil
	},
}

func readAllStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}

func init() {
	checkCmd.AddCommand(checkUnstagedCmd)
	checkCmd.AddCommand(checkStagedCmd)
	checkCmd.AddCommand(checkCommitCmd)
	checkCmd.AddCommand(checkRangeCmd)
	checkCmd.AddCommand(checkFileCmd)

	for _, cmd := range []*cobra.Command{
		checkUnstagedCmd,
		checkStagedCmd,
		checkCommitCmd,
		checkRangeCmd,
		checkFileCmd,
	} {
		addCheckFlags(cmd)
	}

	checkRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", true, "Use merge base for branch comparisons")
}
