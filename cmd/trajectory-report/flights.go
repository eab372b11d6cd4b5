package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/trajectory.report/internal/api"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/units"
)

func newFlightsCmd(opts *rootOptions) *cobra.Command {
	var (
		server string
		tz     string
	)
	cmd := &cobra.Command{
		Use:   "flights",
		Short: "List stored flights",
		Long:  `List flights from the local store, or from a running server with --server.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				flights []store.Flight
				err     error
			)
			if server != "" {
				flights, err = api.NewClient(server).ListFlights(cmd.Context())
			} else {
				var st *store.Store
				st, err = store.OpenMigrated(opts.dbPath)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer st.Close()
				flights, err = st.ListFlights(cmd.Context())
			}
			if err != nil {
				return err
			}

			if tz == "" {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				tz = cfg.GetTimezone()
			}
			if !units.IsTimezoneValid(tz) {
				return fmt.Errorf("invalid timezone %q", tz)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FLIGHT\tICAO24\tSTART\tDURATION\tSAMPLES")
			for _, f := range flights {
				start, err := units.FormatUnix(f.StartUnix, tz)
				if err != nil {
					return err
				}
				d := time.Duration(f.Duration() * float64(time.Second)).Round(time.Second)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", f.ID, f.Icao24, start, d, f.Samples)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "base URL of a running trajectory-report server")
	cmd.Flags().StringVar(&tz, "timezone", "", "timezone for start times (default: the configured timezone)")
	return cmd
}
