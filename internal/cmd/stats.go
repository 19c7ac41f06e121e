package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

const statsTopComponents = 10

func newStatsCmd() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize YaST2 log entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filtered, err := loadFiltered(cmd, args[0], &qf)
			if err != nil {
				return err
			}

			printStats(cmd, filtered)
			return nil
		},
	}

	qf.register(cmd)

	return cmd
}

func printStats(cmd *cobra.Command, log y2log.Log) {
	entries := log.Entries()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "entries\t%d\n", len(entries))
	if len(entries) == 0 {
		return
	}

	fmt.Fprintf(w, "from\t%s\n", entries[0].Timestamp.Format(y2log.TimeLayout))
	fmt.Fprintf(w, "to\t%s\n", entries[len(entries)-1].Timestamp.Format(y2log.TimeLayout))

	levels := make(map[y2log.Level]int)
	components := make(map[string]int)
	pids := make(map[y2log.PID]struct{})
	hosts := make(map[string]struct{})
	for _, e := range entries {
		levels[e.Level]++
		components[e.Component]++
		pids[e.PID] = struct{}{}
		hosts[e.Hostname] = struct{}{}
	}

	fmt.Fprintf(w, "pids\t%d\n", len(pids))
	fmt.Fprintf(w, "hostnames\t%d\n", len(hosts))

	fmt.Fprintln(w)
	for level := y2log.LevelDebug; level <= y2log.LevelUnknown; level++ {
		if count, ok := levels[level]; ok {
			fmt.Fprintf(w, "%s\t%d\n", level, count)
		}
	}

	type componentCount struct {
		name  string
		count int
	}
	sorted := make([]componentCount, 0, len(components))
	for name, count := range components {
		sorted = append(sorted, componentCount{name: name, count: count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})
	if len(sorted) > statsTopComponents {
		sorted = sorted[:statsTopComponents]
	}

	fmt.Fprintln(w)
	for _, c := range sorted {
		fmt.Fprintf(w, "[%s]\t%d\n", c.name, c.count)
	}
}
