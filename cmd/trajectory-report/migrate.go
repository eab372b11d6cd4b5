package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trajectory.report/internal/store"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
	}

	// open returns the store without migrating it.
	open := func() (*store.Store, error) {
		st, err := store.Open(opts.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return st, nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.MigrateUp(store.Migrations()); err != nil {
				return err
			}
			return printVersion(cmd, st)
		},
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.MigrateDown(store.Migrations()); err != nil {
				return err
			}
			return printVersion(cmd, st)
		},
	}
	version := &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			return printVersion(cmd, st)
		},
	}
	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long:  `Set the schema version without running migrations. Only use this to recover from a dirty migration.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.MigrateForce(store.Migrations(), v); err != nil {
				return err
			}
			pterm.Warning.Printf("Forced schema version to %d\n", v)
			return printVersion(cmd, st)
		},
	}
	cmd.AddCommand(up, down, version, force)
	return cmd
}

func printVersion(cmd *cobra.Command, st *store.Store) error {
	v, dirty, err := st.MigrateVersion(store.Migrations())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d", v)
	if dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
