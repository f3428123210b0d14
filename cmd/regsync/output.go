package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/umee-network/wallet-registry/internal/sync"
	"github.com/umee-network/wallet-registry/internal/ui"
)

// writeStructured writes v as json, yaml or toml. v must be a struct for toml.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("format %q has no structured encoding", format)
}

// renderSummary prints a sync or plan summary as text.
func renderSummary(p *ui.Printer, summary *sync.Summary) {
	title := "Sync"
	if summary.DryRun {
		title = "Plan"
	}
	p.Printf("%s %s\n\n", p.RenderHeader(title), p.RenderMuted("(run "+summary.RunID+")"))

	var total struct{ insert, update, delete int }

	for _, o := range summary.Outcomes {
		switch o.Status {
		case sync.StatusSkipped:
			p.Printf("%s: %s\n", p.RenderAccent(string(o.Kind)), p.RenderMuted("skipped, no local records"))
			continue
		case sync.StatusFailed:
			p.Printf("%s: %s %s\n", p.RenderAccent(string(o.Kind)), p.RenderFail("failed"), o.Error)
			continue
		}

		p.Printf("%s: %s (%d local, %d remote)\n", p.RenderAccent(string(o.Kind)), o.Status, o.Local, o.Remote)
		for _, key := range o.Inserted {
			p.Printf("  %s %s\n", p.RenderPass("+"), key)
		}
		for _, key := range o.Updated {
			p.Printf("  %s %s\n", p.RenderWarn("~"), key)
		}
		for _, key := range o.Deleted {
			p.Printf("  %s %s\n", p.RenderFail("-"), key)
		}

		total.insert += o.Counts.Insert
		total.update += o.Counts.Update
		total.delete += o.Counts.Delete
	}

	p.Println()
	switch {
	case summary.Failed():
		p.Printf("%s %d inserted, %d updated, %d deleted; some kinds failed\n",
			p.RenderFail("✗"), total.insert, total.update, total.delete)
	case summary.DryRun:
		p.Printf("%s %d to insert, %d to update, %d to delete\n",
			p.RenderAccent("→"), total.insert, total.update, total.delete)
	default:
		p.Printf("%s %d inserted, %d updated, %d deleted\n",
			p.RenderPass("✓"), total.insert, total.update, total.delete)
	}
}

// pendingWrites counts the writes a plan would make.
func pendingWrites(summary *sync.Summary) int {
	n := 0
	for _, o := range summary.Outcomes {
		n += o.Counts.Insert + o.Counts.Update + o.Counts.Delete
	}
	return n
}
