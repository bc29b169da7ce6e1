package main

import (
	"github.com/raykavin/backview/pkg/client"
	"github.com/raykavin/backview/pkg/server"
	"github.com/spf13/cobra"
)

func (a *app) buildServeCmd() *cobra.Command {
	var (
		addr      string
		noBackend bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service and chart page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			options, err := a.serverOptions(!noBackend)
			if err != nil {
				return err
			}

			srv, err := server.New(a.log, options...)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address, overrides server.addr")
	serveCmd.Flags().BoolVar(&noBackend, "no-backtest", false, "Disable the backtest endpoint, only render uploaded results")

	return serveCmd
}

func (a *app) serverOptions(withBackend bool) ([]server.Option, error) {
	charts, err := a.charts()
	if err != nil {
		return nil, err
	}
	loc, err := a.cfg.Render.Location()
	if err != nil {
		return nil, err
	}

	options := []server.Option{
		server.WithAddr(a.cfg.Server.Addr),
		server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins...),
		server.WithCharts(charts...),
		server.WithLocation(loc),
		server.WithImageSize(a.cfg.Render.Width, a.cfg.Render.Height),
	}
	if a.cfg.Server.Debug {
		options = append(options, server.WithDebug())
	}
	if withBackend {
		options = append(options, server.WithClient(a.newClient()))
	}
	return options, nil
}

func (a *app) newClient() *client.Client {
	api := a.cfg.API
	return client.New(api.Endpoint,
		client.WithTimeout(api.Timeout),
		client.WithRetries(api.MaxRetries, api.BackoffMin, api.BackoffMax),
		client.WithLogger(a.log),
	)
}
