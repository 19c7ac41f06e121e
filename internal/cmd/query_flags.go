package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/y2logs/pkg/y2log"
)

// queryFlags is the predicate flag set shared by filter, stats, follow
// and export. Each set flag translates into exactly one predicate call.
type queryFlags struct {
	level     string
	pid       string
	component string
	hostname  string
	from      string
	to        string
}

func (qf *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&qf.level, "level", "", "filter by level (debug, info, warn, error, fatal or unknown)")
	cmd.Flags().StringVar(&qf.pid, "pid", "", "filter by process ID")
	cmd.Flags().StringVar(&qf.component, "component", "", "filter by component name (exact match)")
	cmd.Flags().StringVar(&qf.hostname, "hostname", "", "filter by hostname (exact match)")
	cmd.Flags().StringVar(&qf.from, "from", "", `only entries at or after this time ("YYYY-MM-DD HH:MM:SS")`)
	cmd.Flags().StringVar(&qf.to, "to", "", `only entries at or before this time ("YYYY-MM-DD HH:MM:SS")`)
}

// apply translates the set flags into predicate calls on the query.
// Decode failures surface immediately; nothing is silently defaulted.
func (qf *queryFlags) apply(cmd *cobra.Command, query *y2log.Query) error {
	flags := cmd.Flags()

	if flags.Changed("level") {
		level, err := y2log.ParseLevel(qf.level)
		if err != nil {
			return err
		}
		query.WithLevel(level)
	}
	if flags.Changed("pid") {
		pid, err := y2log.ParsePID(qf.pid)
		if err != nil {
			return err
		}
		query.WithPID(pid)
	}
	if flags.Changed("component") {
		query.WithComponent(qf.component)
	}
	if flags.Changed("hostname") {
		query.WithHostname(qf.hostname)
	}
	if flags.Changed("from") {
		from, err := parseDatetime(qf.from)
		if err != nil {
			return err
		}
		query.From(from)
	}
	if flags.Changed("to") {
		to, err := parseDatetime(qf.to)
		if err != nil {
			return err
		}
		query.To(to)
	}

	return nil
}

func parseDatetime(s string) (time.Time, error) {
	t, err := time.Parse(y2log.TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q (expected \"YYYY-MM-DD HH:MM:SS\")", s)
	}
	return t, nil
}
