package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/dmaher42/athens/pkg/collision"
	"github.com/dmaher42/athens/pkg/validation"
)

func printResult(w io.Writer, r validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", r.Level, r.Message)
	if r.Path != "" {
		fmt.Fprintf(w, "    -> %s = %v\n", r.Path, r.ActualValue)
	}
	if r.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", r.Expected)
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(w, e)
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, wr := range r.Warnings {
			printResult(w, wr)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printVerdict(w io.Writer, x, y float64, v collision.Verdict, g *collision.Geometry) {
	status := "WALKABLE"
	if !v.Walkable {
		status = "BLOCKED (" + v.Reason + ")"
	}
	fmt.Fprintf(w, "(%.2f, %.2f): %s\n", x, y, status)

	if m := g.Snapshot(); m != nil {
		counts := m.Counts()
		layers := make([]string, 0, len(counts))
		for l := range counts {
			layers = append(layers, string(l))
		}
		sort.Strings(layers)
		fmt.Fprintf(w, "snapshot %s:", m.ID)
		for _, l := range layers {
			fmt.Fprintf(w, " %s=%d", l, counts[collision.Layer(l)])
		}
		fmt.Fprintln(w)
	}
	if g.HasSlopeMap() {
		fmt.Fprintf(w, "slope map attached, threshold %.3f\n", g.SlopeThreshold())
	}
}
