package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trajectory.report/internal/decode"
	"github.com/banshee-data/trajectory.report/internal/store"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var groupBy string
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Decode state-vector files and store their flights",
		Long: `Decode CSV, TSV or pipe-table state-vector exports, split them into one
flight per aircraft, and store them. Prints the new flight ids.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.OpenMigrated(opts.dbPath)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			total := 0
			for _, path := range args {
				dec := decode.ForPath(path)
				dec.GroupBy = groupBy
				ts, err := dec.DecodeAllFile(path)
				if err != nil {
					return fmt.Errorf("decode %s: %w", path, err)
				}
				flights, err := st.ImportAll(cmd.Context(), ts, path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				for _, f := range flights {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", f.ID, f.Icao24, f.Samples)
				}
				total += len(flights)
			}
			pterm.Success.Printf("Imported %d flights into %s\n", total, opts.dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", decode.DefaultGroupBy, "column identifying the aircraft")
	return cmd
}
