package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/umee-network/wallet-registry/internal/loader"
	"github.com/umee-network/wallet-registry/internal/sync"
	"github.com/umee-network/wallet-registry/internal/ui"
)

// dirFlags are the directory overrides shared by sync and plan.
type dirFlags struct {
	chainsDir   string
	projectsDir string
}

func (d *dirFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.chainsDir, "chains-dir", "", "chain files directory (overrides chains_dir)")
	cmd.Flags().StringVar(&d.projectsDir, "projects-dir", "", "project files directory (overrides projects_dir)")
}

func (d *dirFlags) apply(env *runEnv) {
	if d.chainsDir != "" {
		env.cfg.ChainsDir = d.chainsDir
	}
	if d.projectsDir != "" {
		env.cfg.ProjectsDir = d.projectsDir
	}
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dirs    dirFlags
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the document store with the local files",
		Long: `Reconcile the remote collections with the local registry files.

For each of chains, assets and projects:
  1. Read the local files (a missing or empty directory skips the kind)
  2. Read the remote collection and compute inserts, updates and deletes
  3. Commit all writes for the kind in one transaction

A failed transaction leaves its collection untouched and does not stop the
other kinds. The command exits non-zero if any kind failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, rootOpts, &dirs, confirm)
		},
	}

	dirs.register(cmd)
	cmd.Flags().BoolVar(&confirm, "confirm", false, "show the plan and ask before writing")

	return cmd
}

func runSync(cmd *cobra.Command, rootOpts *RootOptions, dirs *dirFlags, confirm bool) error {
	// The preview and prompt are text; mixing them into a structured
	// document would make it unparseable.
	if confirm && rootOpts.Format != "text" {
		return fmt.Errorf("--confirm cannot be used with --format %s", rootOpts.Format)
	}

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

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)
	ldr := loader.New(env.cfg.Loader.Concurrency, env.logger)

	if confirm {
		planner := sync.New(store, sync.Options{Loader: ldr, Logger: env.logger, DryRun: true, RunID: env.runID})
		plan, err := planner.Run(cmd.Context(), env.cfg.ChainsDir, env.cfg.ProjectsDir)
		if err != nil {
			return err
		}
		renderSummary(printer, plan)

		if pendingWrites(plan) == 0 {
			printer.Println("Nothing to do.")
			return nil
		}

		ok, err := askConfirm(cmd, "Apply these changes?")
		if err != nil {
			return err
		}
		if !ok {
			printer.Println("Aborted.")
			return nil
		}
		printer.Println()
	}

	syncer := sync.New(store, sync.Options{Loader: ldr, Logger: env.logger, RunID: env.runID})
	summary, runErr := syncer.Run(cmd.Context(), env.cfg.ChainsDir, env.cfg.ProjectsDir)

	if summary != nil {
		if rootOpts.Format == "text" {
			renderSummary(printer, summary)
		} else if err := writeStructured(out, rootOpts.Format, summary); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed() {
		return errors.New("sync finished with failed kinds")
	}
	return nil
}

// askConfirm prompts on the terminal, or reads a y/n line when not attached to one.
func askConfirm(cmd *cobra.Command, title string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Apply").
		Negative("Cancel").
		Value(&ok)

	if ui.IsInteractive(cmd.InOrStdin(), cmd.OutOrStdout()) {
		if err := field.Run(); err != nil {
			return false, fmt.Errorf("confirmation aborted: %w", err)
		}
		return ok, nil
	}

	if err := field.RunAccessible(cmd.OutOrStdout(), cmd.InOrStdin()); err != nil {
		return false, err
	}
	return ok, nil
}
