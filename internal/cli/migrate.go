package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eleven-am/todolist/internal/migrator"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var migrateOpts migrator.Options
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Sync the database schema",
		Long: `Compare the live database with the schema built into this binary and apply
the difference. Destructive changes (dropped tables, columns, indexes or
foreign keys) are refused unless --allow-destructive is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			dbCfg, err := opts.config.DBConfig()
			if err != nil {
				return err
			}

			plan, err := migrator.New(dbCfg).Run(ctx, migrateOpts)
			switch {
			case migrator.IsDatabaseMissing(err):
				return fmt.Errorf("%w (use --create-if-not-exists to create it)", err)
			case errors.Is(err, migrator.ErrDestructive):
				printPlan(cmd.OutOrStdout(), plan, false)
				return fmt.Errorf("%w; rerun with --allow-destructive to apply", err)
			case err != nil:
				return err
			}

			printPlan(cmd.OutOrStdout(), plan, !migrateOpts.DryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateOpts.DryRun, "dry-run", false, "Print the migration without applying it")
	cmd.Flags().BoolVar(&migrateOpts.AllowDestructive, "allow-destructive", false, "Allow potentially destructive operations")
	cmd.Flags().BoolVar(&migrateOpts.CreateIfNotExists, "create-if-not-exists", false, "Create the database if it does not exist")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Abort the migration after this long")
	return cmd
}

func printPlan(w io.Writer, plan *migrator.Plan, applied bool) {
	if plan.Empty() {
		fmt.Fprintln(w, "Schema is up to date.")
		return
	}

	if count, descriptions := migrator.CountDestructiveChanges(plan.Changes); count > 0 {
		fmt.Fprintf(w, "WARNING: %d destructive change(s):\n", count)
		for _, d := range descriptions {
			fmt.Fprintf(w, "  - %s\n", d)
		}
	}

	fmt.Fprintln(w, "-- up")
	for _, stmt := range plan.Statements {
		fmt.Fprintf(w, "%s;\n", stmt)
	}
	if !applied && len(plan.Reverse) > 0 {
		fmt.Fprintln(w, "-- down")
		for _, stmt := range plan.Reverse {
			fmt.Fprintf(w, "%s;\n", stmt)
		}
	}

	if applied {
		fmt.Fprintf(w, "Applied %d statement(s).\n", len(plan.Statements))
	} else {
		fmt.Fprintln(w, "Nothing applied.")
	}
}
