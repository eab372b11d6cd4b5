package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/trajectory.report/internal/api"
	"github.com/banshee-data/trajectory.report/internal/store"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		listen     string
		grpcListen string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Serve stored flights and plots over HTTP",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := store.OpenMigrated(opts.dbPath)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			srv, err := api.NewServer(st, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if grpcListen == "" {
				return srv.Serve(ctx, listen)
			}

			lis, err := net.Listen("tcp", grpcListen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", grpcListen, err)
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			healthErr := make(chan error, 1)
			go func() {
				err := api.NewHealthService(st, api.DefaultHealthInterval).Serve(ctx, lis)
				cancel()
				healthErr <- err
			}()

			err = srv.Serve(ctx, listen)
			cancel()
			if herr := <-healthErr; err == nil {
				err = herr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "listen address")
	cmd.Flags().StringVar(&grpcListen, "grpc-listen", "", "gRPC health service listen address (disabled when empty)")
	return cmd
}
