package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/umee-network/wallet-registry/internal/record"
	"github.com/umee-network/wallet-registry/internal/ui"
)

type statusResult struct {
	Project     string         `json:"project" yaml:"project" toml:"project"`
	Store       string         `json:"store" yaml:"store" toml:"store"`
	Collections map[string]int `json:"collections" yaml:"collections" toml:"collections"`
}

var collections = []string{
	record.ChainsCollection,
	record.AssetsCollection,
	record.ProjectsCollection,
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show document counts per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			store, err := env.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			result := statusResult{
				Project:     env.cfg.Project,
				Store:       redact(env.cfg.Store.URL),
				Collections: make(map[string]int, len(collections)),
			}
			for _, c := range collections {
				n, err := store.Count(cmd.Context(), c)
				if err != nil {
					return err
				}
				result.Collections[c] = n
			}

			if rootOpts.Format != "text" {
				return writeStructured(cmd.OutOrStdout(), rootOpts.Format, &result)
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.Printf("%s %s\n\n", p.RenderHeader("Registry status"), p.RenderMuted("("+result.Project+")"))
			p.Printf("Store: %s\n", result.Store)
			for _, c := range collections {
				p.Printf("%s: %d\n", p.RenderAccent(c), result.Collections[c])
			}
			return nil
		},
	}
}

// redact drops credentials from a store URL.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	if q := u.Query(); q.Has("authToken") {
		q.Set("authToken", "redacted")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
