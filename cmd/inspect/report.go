package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"snapgram/internal/database"

	"gopkg.in/yaml.v3"
)

type report struct {
	Driver      string                `json:"driver" yaml:"driver"`
	Tables      []string              `json:"tables" yaml:"tables"`
	Constraints []database.Constraint `json:"constraints" yaml:"constraints"`
}

func validFormat(format string) bool {
	switch format {
	case "text", "json", "yaml":
		return true
	}
	return false
}

func render(w io.Writer, format string, r *report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return renderText(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderText(w io.Writer, r *report) error {
	fmt.Fprintf(w, "driver: %s\n\ntables (%d):\n", r.Driver, len(r.Tables))
	for _, t := range r.Tables {
		fmt.Fprintf(w, "  %s\n", t)
	}
	fmt.Fprintf(w, "\nconstraints (%d):\n", len(r.Constraints))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  TABLE\tNAME\tDEFINITION")
	for _, c := range r.Constraints {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Table, c.Name, c.Definition)
	}
	return tw.Flush()
}
