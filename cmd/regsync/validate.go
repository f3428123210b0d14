package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/umee-network/wallet-registry/internal/schema"
	"github.com/umee-network/wallet-registry/internal/ui"
)

// validateResult is the structured output of validate.
type validateResult struct {
	SchemaVersion string           `json:"schemaVersion" yaml:"schemaVersion" toml:"schemaVersion"`
	Valid         int              `json:"valid" yaml:"valid" toml:"valid"`
	Invalid       int              `json:"invalid" yaml:"invalid" toml:"invalid"`
	Reports       []*schema.Report `json:"reports" yaml:"reports" toml:"reports"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate chain files against the registry schema",
		Long: `Validate every chain file in dir (default: chains_dir from the config).

A file is valid when every asset carries each required field as a string of
at least two characters, and the file matches the schema of its chain_type.
The command exits non-zero if any file is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			dir := env.cfg.ChainsDir
			if len(args) == 1 {
				dir = args[0]
			}

			reports, err := schema.ValidateDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			result := validateResult{SchemaVersion: schema.Version, Reports: reports}
			for _, r := range reports {
				if r.Valid() {
					result.Valid++
					continue
				}
				result.Invalid++
				env.logger.Warn("invalid chain file", "file", r.File, "chain_id", r.ChainID)
			}

			if rootOpts.Format == "text" {
				renderValidation(ui.NewPrinter(cmd.OutOrStdout()), &result)
			} else if err := writeStructured(cmd.OutOrStdout(), rootOpts.Format, &result); err != nil {
				return err
			}

			if result.Invalid > 0 {
				return fmt.Errorf("%d of %d chain files are invalid", result.Invalid, len(reports))
			}
			return nil
		},
	}

	return cmd
}

func renderValidation(p *ui.Printer, result *validateResult) {
	p.Printf("%s %s\n\n", p.RenderHeader("Validate"), p.RenderMuted("(schema "+result.SchemaVersion+")"))

	for _, r := range result.Reports {
		mark := p.RenderPass("✓")
		if !r.Valid() {
			mark = p.RenderFail("✗")
		}

		if r.ParseError != "" {
			p.Printf("%s %s\n", mark, r.File)
			p.Printf("    parse: %s\n", r.ParseError)
			continue
		}

		p.Printf("%s %s: %s (%s, %s)\n", mark, r.File, r.Name, r.ChainID, r.Kind)
		for _, msg := range r.FieldErrors {
			p.Printf("    field: %s\n", msg)
		}
		for _, msg := range r.StructureErrors {
			p.Printf("    structure: %s\n", msg)
		}
		for _, msg := range r.Warnings {
			p.Printf("    %s %s\n", p.RenderWarn("warning:"), msg)
		}
	}

	p.Printf("\n%d valid, %d invalid\n", result.Valid, result.Invalid)
}
