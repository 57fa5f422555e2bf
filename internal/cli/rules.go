package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/diffgate/internal/config"
	"github.com/dshills/diffgate/internal/engine"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule files",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the derived constraints for the configured rules file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if cfg.RulesFile == "" {
			fmt.Fprintln(os.Stderr, "No rules file configured. Use --rules or `diffgate config set rulesFile <path>`.")
			exitCode = ExitUsageError
			return nil
		}
		doc, err := engine.LoadRules(cfg.RulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		constraints := engine.DeriveConstraints(doc)
		data, err := json.MarshalIndent(constraints, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report rules the engine would silently skip or weaken",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if cfg.RulesFile == "" {
			fmt.Fprintln(os.Stderr, "No rules file configured. Use --rules or `diffgate config set rulesFile <path>`.")
			exitCode = ExitUsageError
			return nil
		}
		doc, err := engine.LoadRules(cfg.RulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		problems := engine.LintRules(doc)
		if len(problems) == 0 {
			fmt.Fprintf(os.Stdout, "%s: %d rule(s), no problems found.\n", cfg.RulesFile, len(doc.Rules))
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(os.Stdout, "%s: %s\n", cfg.RulesFile, p)
		}
		exitCode = ExitFindings
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesLintCmd)

	rulesShowCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (JSON or YAML)")
	rulesLintCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (JSON or YAML)")
}
