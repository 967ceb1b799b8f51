package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/demo"
	"github.com/vango-dev/patchwork/pkg/vango"
)

func demoCmd() *cobra.Command {
	var (
		scenario   string
		clicks     int
		deferred   bool
		verbose    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scenario against an in-memory document",
		Long: `Mount a demo scenario, click its action element and print the
resulting document and the host mutations each phase performed.

Scenarios:
  a  two counters and a running total
  b  a list that grows by one item per click
  c  a view cycling through three branches

Examples:
  patchwork demo --scenario a --clicks 3
  patchwork demo -s c -n 2 --deferred`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			level := cfg.Level()
			if verbose {
				level = slog.LevelDebug
			}
			mode := vango.DrainSync
			if deferred || cfg.Deferred() {
				mode = vango.DrainDeferred
			}
			report, err := demo.Run(cmd.Context(), scenario, demo.Options{
				Clicks: clicks,
				Mode:   mode,
				Logger: newLogger(cmd.ErrOrStderr(), level),
			})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report, mode)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "a", "Scenario to run (a, b or c)")
	cmd.Flags().IntVarP(&clicks, "clicks", "n", 1, "Number of clicks to dispatch")
	cmd.Flags().BoolVar(&deferred, "deferred", false, "Drain once per click instead of on every post")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log scheduler passes")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to patchwork.yaml (drainMode and logLevel are honored)")

	return cmd
}

func printReport(w io.Writer, r *demo.Report, mode vango.DrainMode) {
	success(w, "scenario %s: %s", r.Scenario.Name, r.Scenario.Title)
	info(w, "clicks: %d  passes: %d  mode: %s", r.Clicks, r.Passes, mode)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.HTML)
	fmt.Fprintln(w)
	printOps(w, "mount", r.MountOps)
	printOps(w, "clicks", r.ClickOps)
}

func printOps(w io.Writer, label string, ops map[string]int) {
	names := make([]string, 0, len(ops))
	total := 0
	for name, n := range ops {
		names = append(names, name)
		total += n
	}
	sort.Strings(names)

	info(w, "%s ops: %d", label, total)
	for _, name := range names {
		info(w, "  %-14s %d", name, ops[name])
	}
}
