package main

import (
	"github.com/rgehrsitz/finrechner/internal/api"
	"github.com/rgehrsitz/finrechner/internal/marketdata"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculators as a JSON HTTP API",
	Long: `Serve POST /api/v1/{compound,retirement,withdrawal,withdrawal/max,goals,montecarlo}
and GET /healthz until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			env.settings.Server.Addr = addr
		}

		server := api.NewServer(env.settings, env.newEngine())
		server.SetLogger(env.logger.WithField("component", "api"))
		if estimator := marketdata.NewEstimatorFromSettings(env.settings.MarketData); estimator != nil {
			estimator.SetLogger(env.logger.WithField("component", "marketdata"))
			server.Estimator = estimator
		}

		return server.ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address, overrides server.addr")
	rootCmd.AddCommand(serveCmd)
}
