package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/umee-network/wallet-registry/internal/loader"
	"github.com/umee-network/wallet-registry/internal/sync"
	"github.com/umee-network/wallet-registry/internal/ui"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var dirs dirFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what sync would change, without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.setup(cmd)
			if err != nil {
				return err
			}
			defer env.close()
			dirs.apply(env)

			store, err := env.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			planner := sync.New(store, sync.Options{
				Loader: loader.New(env.cfg.Loader.Concurrency, env.logger),
				Logger: env.logger,
				DryRun: true,
				RunID:  env.runID,
			})

			summary, runErr := planner.Run(cmd.Context(), env.cfg.ChainsDir, env.cfg.ProjectsDir)
			if summary != nil {
				if rootOpts.Format == "text" {
					renderSummary(ui.NewPrinter(cmd.OutOrStdout()), summary)
				} else if err := writeStructured(cmd.OutOrStdout(), rootOpts.Format, summary); err != nil {
					return err
				}
			}
			if runErr != nil {
				return runErr
			}
			if summary.Failed() {
				return errors.New("plan could not be computed for some kinds")
			}
			return nil
		},
	}

	dirs.register(cmd)
	return cmd
}
