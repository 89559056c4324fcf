package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/pipeline"
)

// printSummary writes a human-readable run report
func printSummary(w io.Writer, result *pipeline.Result, review int) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	stats := result.Stats
	fmt.Fprintf(w, "\n%s\n\n", cyan("=== Resolution Run "+result.RunID+" ==="))
	fmt.Fprintf(w, "  Zip policy:   %s\n", result.ZipPolicy)
	fmt.Fprintf(w, "  Records:      %d", stats.Records)
	if stats.Duplicates > 0 {
		fmt.Fprintf(w, " %s", yellow(fmt.Sprintf("(%d duplicate ids dropped)", stats.Duplicates)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Candidates:   %d\n", stats.Candidates)
	fmt.Fprintf(w, "  Matches:      %d\n", stats.Matches)
	fmt.Fprintf(w, "  Customers:    %s (%d with more than one account)\n", green(stats.Clusters), stats.MultiMember)
	fmt.Fprintf(w, "  Duration:     %s\n", stats.Duration.Round(time.Millisecond))

	if len(stats.Labels) > 0 {
		fmt.Fprintf(w, "\n%s\n", yellow("Decisions by rule:"))
		labels := make([]string, 0, len(stats.Labels))
		for l := range stats.Labels {
			labels = append(labels, string(l))
		}
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(w, "  %-9s %d\n", l, stats.Labels[models.MatchLabel(l)])
		}
	}

	if review <= 0 {
		return
	}
	clusters := result.Partition.MultiMember(review)
	fmt.Fprintf(w, "\n%s\n", yellow("Largest customers:"))
	if len(clusters) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("No multi-account customers"))
		return
	}
	for _, c := range clusters {
		fmt.Fprintf(w, "  %s  %d accounts  %s\n", green(c.CustomerID), c.Size(), gray(strings.Join(c.Members, ", ")))
	}
}
