package main

import (
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/config"
	"github.com/Ramsey-B/bramble/pkg/rules"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the match rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			thresholds, err := cfg.Thresholds()
			if err != nil {
				return err
			}

			engine := rules.NewEngine(ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {}), thresholds)
			green := color.New(color.FgGreen).SprintFunc()
			gray := color.New(color.FgHiBlack).SprintFunc()

			w := cmd.OutOrStdout()
			for i, r := range engine.Rules() {
				fmt.Fprintf(w, "%2d. %s  tier %d  %s\n", i+1, green(r.Label), r.Tier, r.Description)
			}
			fmt.Fprintf(w, "    %s\n", gray("otherwise NO_MATCH"))
			return nil
		},
	}
}
