package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hackforge/atlasman/internal/cleanup"

	"github.com/fatih/color"
	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v2"
)

// supported output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func renderReports(w io.Writer, reports []cleanup.Report, format string) error {
	switch format {
	case outputJSON:
		return renderReportsJSON(w, reports)
	case outputYAML:
		return yaml.NewEncoder(w).Encode(reports)
	case outputTable:
		renderReportsTable(w, reports)
		return nil
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// renderReportsJSON keeps report keys in declaration order so scheduler
// logs diff cleanly between runs
func renderReportsJSON(w io.Writer, reports []cleanup.Report) error {
	out := make([]*orderedmap.OrderedMap, 0, len(reports))
	for _, report := range reports {
		m := orderedmap.New()
		m.Set("eventId", report.EventID)
		if report.EventName != "" {
			m.Set("eventName", report.EventName)
		}
		m.Set("clustersFound", report.ClustersFound)
		m.Set("clustersDeleted", report.ClustersDeleted)
		if len(report.Errors) > 0 {
			m.Set("errors", report.Errors)
		}
		if report.DryRun {
			m.Set("dryRun", true)
		}
		out = append(out, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderReportsTable(w io.Writer, reports []cleanup.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "no events need cleanup")
		return
	}

	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	bold.Fprintf(w, "%-28s %-24s %8s %8s\n", "EVENT", "NAME", "FOUND", "DELETED")
	for _, report := range reports {
		fmt.Fprintf(w, "%-28s %-24s %8d %8d", report.EventID, report.EventName, report.ClustersFound, report.ClustersDeleted)
		if report.DryRun {
			fmt.Fprint(w, "  (dry run)")
		}
		fmt.Fprintln(w)
		for _, errMsg := range report.Errors {
			red.Fprintf(w, "  error: %s\n", errMsg)
		}
	}
}
