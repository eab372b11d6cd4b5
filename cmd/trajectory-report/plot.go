package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/banshee-data/trajectory.report/internal/decode"
	"github.com/banshee-data/trajectory.report/internal/plotting"
	"github.com/banshee-data/trajectory.report/internal/render"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

type plotOptions struct {
	out      string
	kind     string
	quantity []string
	flights  []string
	formats  []string
	title    string
}

func newPlotCmd(opts *rootOptions) *cobra.Command {
	po := &plotOptions{}
	cmd := &cobra.Command{
		Use:   "plot [FILE...]",
		Short: "Render quantity or route plots",
		Long: `Render plots of flights decoded from FILE arguments, or of stored flights
named with --flight. Without --quantity the route is plotted; each
--quantity adds one quantity plot. Kind defaults to single for one flight
and multi otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, opts, po, args)
		},
	}
	cmd.Flags().StringVarP(&po.out, "out", "o", "plots", "output directory")
	cmd.Flags().StringVar(&po.kind, "kind", "", "single, multi or shaded")
	cmd.Flags().StringSliceVarP(&po.quantity, "quantity", "q", nil, "quantities to plot: lat, lon, baroaltitude, geoaltitude, heading, velocity")
	cmd.Flags().StringSliceVar(&po.flights, "flight", nil, "stored flight ids (reads --db)")
	cmd.Flags().StringSliceVar(&po.formats, "format", []string{"png"}, "output formats: png, html")
	cmd.Flags().StringVar(&po.title, "title", "", "figure title")
	return cmd
}

func runPlot(cmd *cobra.Command, opts *rootOptions, po *plotOptions, args []string) error {
	if len(args) == 0 && len(po.flights) == 0 {
		return fmt.Errorf("%w: give state-vector files or --flight ids", trajectory.ErrInvalidInput)
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	plotter, err := plotting.New(cfg)
	if err != nil {
		return err
	}

	formats := make([]render.Format, 0, len(po.formats))
	for _, f := range po.formats {
		parsed, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		formats = append(formats, parsed)
	}

	ts, err := loadFlights(cmd, opts, po, args)
	if err != nil {
		return err
	}

	kind := plotting.Multi
	if len(ts) == 1 {
		kind = plotting.Single
	}
	if po.kind != "" {
		if kind, err = plotting.ParseKind(po.kind); err != nil {
			return err
		}
	}

	var reqs []plotting.Request
	if len(po.quantity) == 0 {
		reqs = append(reqs, plotting.Request{Target: plotting.RouteTarget, Kind: kind, Title: po.title})
	}
	for _, name := range po.quantity {
		q, err := trajectory.ParseQuantity(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		reqs = append(reqs, plotting.Request{Target: plotting.QuantityTarget, Kind: kind, Quantity: q, Title: po.title})
	}

	figs := make([]plotting.Figure, 0, len(reqs))
	for _, req := range reqs {
		fig, err := plotter.Plot(req, ts)
		if err != nil {
			return err
		}
		if len(fig.Dropped) > 0 {
			pterm.Warning.Printf("Dropped %d flights with missing positions: %s\n", len(fig.Dropped), strings.Join(fig.Dropped, ", "))
		}
		figs = append(figs, fig)
	}

	written, err := render.NewOutput(po.out).Save(figs, formats...)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	pterm.Success.Printf("Rendered %d files\n", len(written))
	return nil
}

// loadFlights decodes every file argument and then appends stored flights.
func loadFlights(cmd *cobra.Command, opts *rootOptions, po *plotOptions, args []string) ([]trajectory.Trajectory, error) {
	var ts []trajectory.Trajectory
	for _, path := range args {
		decoded, err := decode.ForPath(path).DecodeAllFile(path)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		ts = append(ts, decoded...)
	}
	if len(po.flights) == 0 {
		return ts, nil
	}

	st, err := store.OpenMigrated(opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	stored, err := st.LoadTrajectories(cmd.Context(), po.flights)
	if err != nil {
		return nil, err
	}
	return append(ts, stored...), nil
}
